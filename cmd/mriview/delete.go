package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/workflow"
)

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|number>",
		Short: "Delete an analysis",
		Long: `Delete removes an analysis and its images from the service after asking
for confirmation. Use --yes to skip the prompt.

Examples:
  mriview delete analysis_20240101120000
  mriview delete -y 1`,
		Args: cobra.ExactArgs(1),
		RunE: runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) (err error) {
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

	if _, err := openTarget(ctx, s, args[0]); err != nil {
		return err
	}

	switch outcome := s.app.Modal.Delete(ctx); outcome {
	case workflow.DeleteSucceeded:
		return nil
	case workflow.DeleteCancelled:
		s.term.Notify("Deletion cancelled")
		return nil
	default:
		s.logger.Debug("delete finished", "outcome", outcome.String())
		return errReported
	}
}
