package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nao1215/mriview/internal/api"
	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/render"
)

// Deletion texts.
const (
	DeletePrompt         = "Are you sure you want to delete this analysis?"
	DeleteSuccessMessage = "Analysis deleted successfully"
)

// DeleteOutcome reports what Delete did.
type DeleteOutcome int

const (
	// DeleteSkipped means no analysis was open; nothing happened.
	DeleteSkipped DeleteOutcome = iota

	// DeleteCancelled means the user declined the confirmation.
	DeleteCancelled

	// DeleteSucceeded means the analysis was deleted and the modal closed.
	DeleteSucceeded

	// DeleteFailed means the service refused or could not be reached. The
	// modal stays open on the same analysis.
	DeleteFailed
)

// String returns the outcome name.
func (o DeleteOutcome) String() string {
	switch o {
	case DeleteSkipped:
		return "skipped"
	case DeleteCancelled:
		return "cancelled"
	case DeleteSucceeded:
		return "deleted"
	case DeleteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Modal owns the detail view of one past analysis at a time, through
// Closed, Opening and Open, and the deletion of that analysis.
type Modal struct {
	svc       DetailService
	resolver  *artifact.Resolver
	view      ModalView
	confirmer Confirmer
	notifier  Notifier
	history   Refresher
	bg        *Background
	logger    *slog.Logger

	// renderMu orders renders; it is taken before mu and held across the
	// view call so views may read the controller.
	renderMu sync.Mutex
	mu       sync.Mutex
	phase    model.ModalPhase
	current  string
	overlay  *bool
	content  model.ModalContent
}

// ModalOption configures a Modal.
type ModalOption func(*Modal)

// WithModalView sets the view that receives content changes.
func WithModalView(v ModalView) ModalOption {
	return func(m *Modal) { m.view = v }
}

// WithConfirmer sets who approves deletions. Without one every deletion is
// declined.
func WithConfirmer(c Confirmer) ModalOption {
	return func(m *Modal) { m.confirmer = c }
}

// WithNotifier sets where deletion results are reported.
func WithNotifier(n Notifier) ModalOption {
	return func(m *Modal) { m.notifier = n }
}

// WithModalHistoryRefresh sets the history list refreshed after a successful
// deletion. The refresh runs on bg and is not waited for.
func WithModalHistoryRefresh(history Refresher, bg *Background) ModalOption {
	return func(m *Modal) {
		m.history = history
		m.bg = bg
	}
}

// WithModalLogger sets the logger.
func WithModalLogger(logger *slog.Logger) ModalOption {
	return func(m *Modal) { m.logger = logger }
}

// NewModal creates a closed Modal.
func NewModal(svc DetailService, resolver *artifact.Resolver, opts ...ModalOption) *Modal {
	m := &Modal{
		svc:       svc,
		resolver:  resolver,
		view:      discard{},
		confirmer: discard{},
		notifier:  discard{},
		logger:    slog.New(slog.DiscardHandler),
		content:   render.ModalClosed(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open shows analysis id. It renders a loading placeholder, probes for the
// overlay and then renders three panels or the original alone. A probe that
// cannot reach the service renders an error instead, with the analysis still
// current so it can be deleted. If another Open or a Close happens while the
// probe runs, its result is dropped.
func (m *Modal) Open(ctx context.Context, id string) model.ModalContent {
	m.update(func() bool {
		m.phase = model.ModalOpening
		m.current = id
		m.overlay = nil
		m.content = render.ModalLoading(id)
		return true
	})

	probe, err := m.svc.ProbeOverlay(ctx, id)

	return m.update(func() bool {
		if m.phase != model.ModalOpening || m.current != id {
			return false
		}

		m.phase = model.ModalOpen
		if err != nil {
			m.logger.Warn("failed to load analysis", "analysis_id", id, "error", err)
			m.content = render.ModalError(id, err)
			return true
		}
		if probe.Ambiguous {
			m.logger.Warn("overlay probe was inconclusive", "analysis_id", id, "status", probe.StatusCode)
		}

		present := probe.Present
		m.overlay = &present
		m.content = render.ModalPanels(id, present, m.resolver)
		return true
	})
}

// Close hides the detail view and clears the current analysis. Closing a
// closed modal does nothing.
func (m *Modal) Close() {
	m.update(m.closeLocked)
}

// Delete removes the current analysis after the user confirms. On success the
// modal closes and the history is refreshed in the background; on failure
// the modal stays open on the same analysis so the deletion can be retried.
func (m *Modal) Delete(ctx context.Context) DeleteOutcome {
	id, ok := m.CurrentAnalysisID()
	if !ok {
		return DeleteSkipped
	}
	if !m.confirmer.Confirm(ctx, DeletePrompt) {
		return DeleteCancelled
	}

	if err := m.svc.Delete(ctx, id); err != nil {
		m.logger.Warn("failed to delete analysis", "analysis_id", id, "error", err)
		m.notifier.Notify("Error: " + deleteFailureMessage(err))
		return DeleteFailed
	}

	m.logger.Info("analysis deleted", "analysis_id", id)
	m.notifier.Notify(DeleteSuccessMessage)

	m.update(func() bool {
		return m.current == id && m.closeLocked()
	})

	if m.history != nil && m.bg != nil {
		m.bg.Go(ctx, func(ctx context.Context) {
			m.history.RefreshAfterChange(ctx)
		})
	}
	return DeleteSucceeded
}

// CurrentAnalysisID returns the analysis shown, if the modal is not closed.
func (m *Modal) CurrentAnalysisID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.phase != model.ModalClosed
}

// State returns the modal state.
func (m *Modal) State() model.ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.ModalState{Open: m.phase != model.ModalClosed, AnalysisID: m.current}
	if m.overlay != nil {
		v := *m.overlay
		s.HasOverlay = &v
	}
	return s
}

// Content returns what the detail view shows.
func (m *Modal) Content() model.ModalContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// update runs fn with the state locked and renders the content afterwards
// if fn reports a change. It returns the content.
func (m *Modal) update(fn func() bool) model.ModalContent {
	m.renderMu.Lock()
	defer m.renderMu.Unlock()

	m.mu.Lock()
	changed := fn()
	content := m.content
	m.mu.Unlock()

	if changed {
		m.view.RenderModal(content)
	}
	return content
}

func (m *Modal) closeLocked() bool {
	if m.phase == model.ModalClosed {
		return false
	}
	m.phase = model.ModalClosed
	m.current = ""
	m.overlay = nil
	m.content = render.ModalClosed()
	return true
}

// deleteFailureMessage prefers the message sent by the service.
func deleteFailureMessage(err error) string {
	var de *api.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
