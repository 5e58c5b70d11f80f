package workflow

import (
	"context"

	"github.com/nao1215/mriview/internal/api"
	"github.com/nao1215/mriview/internal/model"
)

// Views are called after the controller state is unlocked, one render at a
// time and in the order of the changes. A view may read the controller that
// calls it, but must not change it from inside a render.

// SubmissionView receives every change of the submission area.
type SubmissionView interface {
	RenderSubmission(view model.SubmissionView)
}

// HistoryView receives every full re-render of the history list.
type HistoryView interface {
	RenderHistory(view model.HistoryView)
}

// ModalView receives every change of the detail view.
type ModalView interface {
	RenderModal(content model.ModalContent)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Notifier shows a short message that needs no answer.
type Notifier interface {
	Notify(message string)
}

// Predictor submits images for analysis.
type Predictor interface {
	Predict(ctx context.Context, file *model.ImageFile) (*model.AnalysisResult, error)
}

// HistoryFetcher lists past analyses.
type HistoryFetcher interface {
	History(ctx context.Context) ([]model.AnalysisRecord, error)
}

// DetailService probes and deletes past analyses.
type DetailService interface {
	ProbeOverlay(ctx context.Context, id string) (api.ProbeResult, error)
	Delete(ctx context.Context, id string) error
}

// Service is the full remote service. *api.Client implements it.
type Service interface {
	Predictor
	HistoryFetcher
	DetailService
}

// Refresher re-renders the history list after a server-side change.
// Implemented by *HistorySync.
type Refresher interface {
	RefreshAfterChange(ctx context.Context) model.HistoryView
}

// discard is the view, confirmer and notifier used when none is given.
type discard struct{}

func (discard) RenderSubmission(model.SubmissionView) {}
func (discard) RenderHistory(model.HistoryView)       {}
func (discard) RenderModal(model.ModalContent)        {}
func (discard) Confirm(context.Context, string) bool  { return false }
func (discard) Notify(string)                         {}
