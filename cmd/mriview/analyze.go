package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/imagefile"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Submit an MRI image for tumor analysis",
		Long: `Analyze uploads a PNG or JPEG image to the analysis service and prints
the diagnosis, the confidence and the URLs of the generated images.

The command exits with status 1 when the analysis fails.

Examples:
  # Analyze a scan
  mriview analyze scan.jpg

  # Print the result as JSON and the refreshed history afterwards
  mriview analyze --json --history scan.jpg

  # Talk to a service behind an API gateway
  mriview analyze -u https://mri.example.com -H X-Api-Key=secret scan.png`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().Bool("history", false, "Print the refreshed history after a successful analysis")

	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) (err error) {
	showHistory, err := cmd.Flags().GetBool("history")
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	file, err := imagefile.Load(args[0], s.cfg.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	s.logger.Info("submitting image", "file", imagefile.Describe(file), "sha3_256", file.Digest)

	s.app.Submitter.SelectFile(file)
	phase, err := s.app.Submitter.Submit(ctx)
	if err != nil {
		return err
	}

	if _, err := s.writer.WriteSubmission(report.Submission{File: file, View: s.app.Submitter.View()}); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if phase.Kind() != model.PhaseResult {
		return errReported
	}

	if showHistory {
		s.app.Wait()
		if _, err := s.writer.WriteHistory(s.app.History.View()); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	return nil
}
