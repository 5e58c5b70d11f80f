package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/config"
)

// NewRootCmd creates the root command for mriview.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mriview",
		Short: "Client for a brain MRI tumor analysis service",
		Long: `mriview submits brain MRI images to a tumor analysis service and shows
the diagnosis, the segmentation mask and the tumor overlay it returns.
It also lists, inspects and deletes past analyses.

Settings are read from a .mriview file, MRIVIEW_* environment variables
(or a .env file) and flags, in increasing order of precedence.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging and report details")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .mriview in current or home directory)")
	flags.String("env-file", config.DefaultEnvFile, "File with MRIVIEW_* variables; empty disables it")
	flags.StringP("base-url", "u", "", "Base URL of the analysis service (default "+config.DefaultBaseURL+")")
	flags.String("predict-path", "", "Prediction route: /api/predict or /predict")
	flags.DurationP("timeout", "t", config.DefaultTimeout, "Request timeout")
	flags.Duration("probe-timeout", config.DefaultProbeTimeout, "Overlay probe timeout")
	flags.StringArrayP("header", "H", nil, "Extra request header as Name=Value (repeatable)")
	flags.String("proxy", "", "SOCKS5 proxy address (host:port)")
	flags.BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	flags.BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	flags.StringP("output", "o", "", "Write output to the specified file path")
	flags.BoolP("yes", "y", false, "Answer yes to confirmation prompts")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewShellCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
