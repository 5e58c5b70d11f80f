package workflow

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/render"
)

const refreshKey = "history"

// HistorySync keeps the rendered history list in step with the service.
// Concurrent refreshes share one request; a refresh that finishes after a
// newer one has already rendered is dropped.
type HistorySync struct {
	svc      HistoryFetcher
	resolver *artifact.Resolver
	view     HistoryView
	logger   *slog.Logger
	flight   singleflight.Group

	// renderMu orders renders; it is taken before mu and held across the
	// view call so views may read the controller.
	renderMu sync.Mutex
	mu       sync.Mutex
	seq      uint64
	rendered uint64
	current  model.HistoryView
}

// NewHistorySync creates a HistorySync. A nil view or logger discards output.
func NewHistorySync(svc HistoryFetcher, resolver *artifact.Resolver, view HistoryView, logger *slog.Logger) *HistorySync {
	if view == nil {
		view = discard{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HistorySync{
		svc:      svc,
		resolver: resolver,
		view:     view,
		logger:   logger,
		current:  model.HistoryView{State: model.HistoryEmpty, Entries: []model.HistoryEntry{}},
	}
}

// Refresh fetches the history and re-renders the whole list. It never fails:
// service errors become the error rendering.
func (h *HistorySync) Refresh(ctx context.Context) model.HistoryView {
	v, _, _ := h.flight.Do(refreshKey, func() (any, error) { //nolint:errcheck // fetch never returns an error
		return h.fetch(ctx), nil
	})
	return v.(model.HistoryView) //nolint:forcetypeassert // fetch always returns a HistoryView
}

// RefreshAfterChange is Refresh for callers that have just changed the
// server-side history. It never joins a request that started before the change.
func (h *HistorySync) RefreshAfterChange(ctx context.Context) model.HistoryView {
	h.flight.Forget(refreshKey)
	return h.Refresh(ctx)
}

// View returns the last rendered list.
func (h *HistorySync) View() model.HistoryView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Entry returns the entry at index of the last rendered list.
func (h *HistorySync) Entry(index int) (model.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.current.Entries) {
		return model.HistoryEntry{}, false
	}
	return h.current.Entries[index], true
}

func (h *HistorySync) fetch(ctx context.Context) model.HistoryView {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	var view model.HistoryView
	records, err := h.svc.History(ctx)
	if err != nil {
		h.logger.Warn("failed to load history", "error", err)
		view = render.HistoryError(err)
	} else {
		view = render.History(records, h.resolver)
	}

	h.renderMu.Lock()
	defer h.renderMu.Unlock()

	h.mu.Lock()
	if seq < h.rendered {
		current := h.current
		h.mu.Unlock()
		return current
	}
	h.rendered = seq
	h.current = view
	h.mu.Unlock()

	h.view.RenderHistory(view)
	return view
}
