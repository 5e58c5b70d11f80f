package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// ErrNoSuchEntry is returned by OpenEntry for an index outside the rendered history.
var ErrNoSuchEntry = errors.New("no such history entry")

// Views bundles the sinks an App renders to. Nil fields discard output and
// decline confirmations.
type Views struct {
	Submission SubmissionView
	History    HistoryView
	Modal      ModalView
	Confirmer  Confirmer
	Notifier   Notifier
}

// App wires one Submitter, one HistorySync and one Modal to a service, so
// that submissions and deletions refresh the history they share.
type App struct {
	Submitter *Submitter
	History   *HistorySync
	Modal     *Modal

	bg *Background
}

// NewApp creates an App. maxUpload limits the submitted file size; zero
// disables the limit.
func NewApp(svc Service, resolver *artifact.Resolver, views Views, logger *slog.Logger, maxUpload int64) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bg := &Background{}
	history := NewHistorySync(svc, resolver, views.History, logger)

	submitterOpts := []SubmitterOption{
		WithHistoryRefresh(history, bg),
		WithMaxUploadSize(maxUpload),
		WithSubmitterLogger(logger),
	}
	if views.Submission != nil {
		submitterOpts = append(submitterOpts, WithSubmissionView(views.Submission))
	}

	modalOpts := []ModalOption{
		WithModalHistoryRefresh(history, bg),
		WithModalLogger(logger),
	}
	if views.Modal != nil {
		modalOpts = append(modalOpts, WithModalView(views.Modal))
	}
	if views.Confirmer != nil {
		modalOpts = append(modalOpts, WithConfirmer(views.Confirmer))
	}
	if views.Notifier != nil {
		modalOpts = append(modalOpts, WithNotifier(views.Notifier))
	}

	return &App{
		Submitter: NewSubmitter(svc, resolver, submitterOpts...),
		History:   history,
		Modal:     NewModal(svc, resolver, modalOpts...),
		bg:        bg,
	}
}

// OpenEntry opens the detail view of the history entry at index, as a click
// on that entry would.
func (a *App) OpenEntry(ctx context.Context, index int) (model.ModalContent, error) {
	entry, ok := a.History.Entry(index)
	if !ok {
		return model.ModalContent{}, ErrNoSuchEntry
	}
	return a.Modal.Open(ctx, entry.ID), nil
}

// Wait blocks until background history refreshes have finished.
func (a *App) Wait() {
	a.bg.Wait()
}
