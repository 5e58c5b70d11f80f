package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/config"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/report"
	"github.com/nao1215/mriview/internal/workflow"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id|number>",
		Short: "Show the images of one analysis",
		Long: `Show prints the images of a past analysis. The analysis is given by its
id or by its number in "mriview history" (1 is the newest).

The mask and overlay are listed only when the service still has an overlay
for the analysis.

Examples:
  mriview show analysis_20240101120000
  mriview show 1

  # Download the images to the XDG download directory
  mriview show 1 --save

  # Download the images to ./scans/<id>/
  mriview show 1 --save=./scans`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().String("save", "", "Download the images to this directory (--save=DIR)")
	cmd.Flags().Lookup("save").NoOptDefVal = config.DownloadDir()

	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) (err error) {
	saveDir, err := cmd.Flags().GetString("save")
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

	content, err := openTarget(ctx, s, args[0])
	if err != nil {
		return err
	}

	detail := report.Detail{Content: content}
	if content.Error == "" && saveDir != "" {
		if detail.Saved, err = saveArtifacts(ctx, s, content, saveDir); err != nil {
			return err
		}
	}

	if _, err := s.writer.WriteDetail(detail); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}
	if content.Error != "" {
		return errReported
	}
	return nil
}

// openTarget opens the detail view of an analysis id, or of a 1-based
// position in a freshly loaded history.
func openTarget(ctx context.Context, s *session, target string) (model.ModalContent, error) {
	n, err := strconv.Atoi(target)
	if err != nil {
		return s.app.Modal.Open(ctx, target), nil
	}

	view := s.app.History.Refresh(ctx)
	if view.State == model.HistoryFailed {
		return model.ModalContent{}, errors.New(view.Message)
	}
	content, err := s.app.OpenEntry(ctx, n-1)
	if errors.Is(err, workflow.ErrNoSuchEntry) {
		return model.ModalContent{}, fmt.Errorf("no analysis #%d in history (%d entries)", n, len(view.Entries))
	}
	return content, err
}

// saveArtifacts downloads the images shown in content into dir/<id>/.
func saveArtifacts(ctx context.Context, s *session, content model.ModalContent, dir string) ([]artifact.Saved, error) {
	kinds := []artifact.Kind{artifact.Original}
	if len(content.Panels) == len(artifact.Kinds) {
		kinds = artifact.Kinds
	}

	saved, err := artifact.NewFetcher(s.resolver, s.client).Save(ctx, content.AnalysisID, dir, kinds...)
	if err != nil {
		return nil, fmt.Errorf("failed to save images: %w", err)
	}
	for _, sv := range saved {
		s.logger.Debug("saved artifact", "kind", sv.Kind.String(), "path", sv.Path, "size", sv.Size)
	}
	return saved, nil
}
