package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/api"
	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/config"
	"github.com/nao1215/mriview/internal/log"
	"github.com/nao1215/mriview/internal/report"
	"github.com/nao1215/mriview/internal/workflow"
)

// session is everything a command needs to talk to the analysis service.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *artifact.Resolver
	client   *api.Client
	app      *workflow.App
	writer   report.Writer
	term     *terminal

	closeOutput func() error
}

// newSession builds the configuration from defaults, the config file, the
// environment and the flags of cmd, then wires the client and controllers.
// Progress and prompts go to stderr so that stdout carries only the report.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{Verbose: cfg.Verbose, JSON: cfg.JSONLog})

	resolver, err := artifact.NewResolver(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	client, err := api.NewClient(resolver,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Timeout),
		api.WithProbeTimeout(cfg.ProbeTimeout),
		api.WithPredictPath(cfg.PredictPath),
		api.WithHeaders(cfg.Headers),
		api.WithUserAgent(cfg.UserAgent),
		api.WithProxy(cfg.ProxyAddress),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	out, closeOutput, err := openOutput(cmd.OutOrStdout(), cfg.OutputFile)
	if err != nil {
		return nil, err
	}

	term := newTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
	term.assumeYes = cfg.AssumeYes
	views := workflow.Views{
		Submission: term,
		Modal:      term,
		Confirmer:  term,
		Notifier:   term,
	}

	logger.Debug("session ready",
		"base_url", cfg.BaseURL,
		"predict_path", cfg.PredictPath,
		"timeout", cfg.Timeout,
		"headers", cfg.Headers,
	)

	return &session{
		cfg:         cfg,
		logger:      logger,
		resolver:    resolver,
		client:      client,
		app:         workflow.NewApp(client, resolver, views, logger, cfg.MaxUploadSize),
		writer:      report.New(out, outputFormat(cfg), cfg.Verbose),
		term:        term,
		closeOutput: closeOutput,
	}, nil
}

// Close waits for background refreshes and closes the output file.
func (s *session) Close() error {
	s.app.Wait()
	return s.closeOutput()
}

// buildConfig layers defaults, the config file, the environment and the flags
// that were set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.EnvFile, err = flags.GetString("env-file"); err != nil {
		return nil, err
	}
	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}

	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("predict-path") {
		if cfg.PredictPath, err = flags.GetString("predict-path"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("probe-timeout") {
		if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("header") {
		pairs, err := flags.GetStringArray("header")
		if err != nil {
			return nil, err
		}
		headers, err := config.ParseHeaders(pairs)
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(cfg.Headers, headers)
	}

	// Verbose can also come from MRIVIEW_VERBOSE, so only an explicit flag wins.
	if flags.Changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, err
		}
	}
	if cfg.JSONLog, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if cfg.JSONOutput, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownOutput, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.AssumeYes, err = flags.GetBool("yes"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func outputFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONOutput:
		return report.FormatJSON
	case cfg.MarkdownOutput:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// openOutput returns stdout, or the file at path when one is given.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// errReported marks a failure whose message the command already printed.
var errReported = errors.New("operation failed")
