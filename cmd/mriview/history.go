package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past analyses, newest first",
		Long: `History lists the analyses stored by the service, newest first.
The numbers in the first column can be passed to "mriview show".`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) (err error) {
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

	view := s.app.History.Refresh(ctx)
	if _, err := s.writer.WriteHistory(view); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if view.State == model.HistoryFailed {
		return errReported
	}
	return nil
}
