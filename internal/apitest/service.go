// Package apitest provides an in-process fake of the remote analysis service
// for tests. It mirrors the routes and response shapes of the real service,
// including the string-encoded has_tumor flag and the body-carried errors.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/mriview/internal/model"
)

// Route names accepted by Service.Count.
const (
	RoutePredict = "predict"
	RouteHistory = "history"
	RouteDelete  = "delete"
	RouteStatic  = "static"
)

// Outcome scripts the classification returned by the predict route.
type Outcome struct {
	HasTumor bool
	Accuracy float64

	// OmitMask and OmitOverlay drop the artifact references from the response
	// even when a tumor is reported.
	OmitMask    bool
	OmitOverlay bool
}

// Service is a scriptable fake analysis service backed by httptest.Server.
type Service struct {
	mu sync.Mutex

	server  *httptest.Server
	records []stored
	seq     int
	counts  map[string]int
	headers []http.Header

	outcome       Outcome
	predictStatus int
	predictError  string
	historyStatus int
	historyError  string
	historyBody   string
	deleteStatus  int
	deleteError   string
	probeStatus   map[string]int
	latency       time.Duration
}

type stored struct {
	record     model.AnalysisRecord
	hasOverlay bool
}

// Option configures a Service.
type Option func(*Service)

// WithOutcome sets the classification returned for new submissions.
func WithOutcome(o Outcome) Option {
	return func(s *Service) { s.outcome = o }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Service) { s.latency = d }
}

// WithRecord seeds the history with an analysis. Records are listed newest first
// in insertion order.
func WithRecord(id string, hasOverlay bool) Option {
	return func(s *Service) { s.add(id, hasOverlay) }
}

// New starts a fake service and registers its shutdown with t.Cleanup.
func New(t testing.TB, opts ...Option) *Service {
	t.Helper()

	s := &Service{
		counts:      make(map[string]int),
		probeStatus: make(map[string]int),
		outcome:     Outcome{HasTumor: true, Accuracy: 0.8734},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = httptest.NewServer(s.routes())
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL of the service.
func (s *Service) URL() string {
	return s.server.URL
}

// Close shuts the server down; subsequent requests fail at the network level.
func (s *Service) Close() {
	s.server.Close()
}

// Count returns how many requests hit the given route.
func (s *Service) Count(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[route]
}

// LastHeaders returns the headers of the most recent request.
func (s *Service) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

// Records returns the current history, newest first.
func (s *Service) Records() []model.AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AnalysisRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i].record)
	}
	return out
}

// SetOutcome changes the classification returned for new submissions.
func (s *Service) SetOutcome(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = o
}

// FailPredict makes the predict route answer with status and, when message
// is not empty, an {"error": message} body.
func (s *Service) FailPredict(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictStatus = status
	s.predictError = message
}

// FailHistory makes the history route answer with status and an error body.
func (s *Service) FailHistory(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyStatus = status
	s.historyError = message
}

// SetHistoryBody makes the history route answer 200 with a raw body.
func (s *Service) SetHistoryBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyBody = body
}

// FailDelete makes the delete route answer with status and an error body.
// An empty message produces {"success": false}.
func (s *Service) FailDelete(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteStatus = status
	s.deleteError = message
}

// SetProbeStatus forces the status served for the overlay of analysis id.
func (s *Service) SetProbeStatus(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeStatus[id] = status
}

func (s *Service) routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.track)

	mux.Post("/api/predict", s.handlePredict)
	mux.Post("/predict", s.handlePredict)
	mux.Get("/api/history", s.handleHistory)
	mux.Delete("/api/delete/{id}", s.handleDelete)
	mux.Get("/static/uploads/{id}/{file}", s.handleStatic)

	return mux
}

func (s *Service) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.headers = append(s.headers, r.Header.Clone())
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts[RoutePredict]++
	status, message, outcome := s.predictStatus, s.predictError, s.outcome
	s.mu.Unlock()

	if status != 0 {
		if message != "" {
			writeJSON(w, status, map[string]string{"error": message})
			return
		}
		w.WriteHeader(status)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Empty file name"})
		return
	}

	hasOverlay := outcome.HasTumor && !outcome.OmitOverlay
	s.mu.Lock()
	id := s.add("", hasOverlay)
	s.mu.Unlock()

	images := map[string]any{
		"original": id + "/original.jpg",
		"mask":     nil,
		"overlay":  nil,
	}
	if outcome.HasTumor {
		if !outcome.OmitMask {
			images["mask"] = id + "/mask.png"
		}
		if !outcome.OmitOverlay {
			images["overlay"] = id + "/overlay.png"
		}
	}

	hasTumor := "false"
	if outcome.HasTumor {
		hasTumor = "true"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"has_tumor": hasTumor,
		"accuracy":  outcome.Accuracy,
		"images":    images,
	})
}

func (s *Service) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.counts[RouteHistory]++
	status, message, raw := s.historyStatus, s.historyError, s.historyBody
	s.mu.Unlock()

	if status != 0 {
		if message != "" {
			writeJSON(w, status, map[string]string{"error": message})
			return
		}
		w.WriteHeader(status)
		return
	}
	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw)) //nolint:errcheck // test server
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"analyses": s.Records()})
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[RouteDelete]++

	if s.deleteStatus != 0 {
		if s.deleteError != "" {
			writeJSON(w, s.deleteStatus, map[string]string{"error": s.deleteError})
			return
		}
		writeJSON(w, s.deleteStatus, map[string]bool{"success": false})
		return
	}

	for i, st := range s.records {
		if st.record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Analysis not found"})
}

func (s *Service) handleStatic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file := chi.URLParam(r, "file")

	s.mu.Lock()
	s.counts[RouteStatic]++
	forced, hasForced := s.probeStatus[id]
	var found *stored
	for i := range s.records {
		if s.records[i].record.ID == id {
			found = &s.records[i]
			break
		}
	}
	s.mu.Unlock()

	if file == "overlay.png" && hasForced {
		w.WriteHeader(forced)
		return
	}
	if found == nil {
		http.NotFound(w, r)
		return
	}

	switch file {
	case "original.jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(PixelJPEG) //nolint:errcheck // test server
	case "mask.png", "overlay.png":
		if !found.hasOverlay {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(PixelPNG) //nolint:errcheck // test server
	default:
		http.NotFound(w, r)
	}
}

// AddRecord stores an analysis as if it had been submitted earlier.
func (s *Service) AddRecord(id string, hasOverlay bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(id, hasOverlay)
}

// add stores a record and returns its id. Callers hold s.mu, except options
// applied before the server starts.
func (s *Service) add(id string, hasOverlay bool) string {
	s.seq++
	if id == "" {
		id = fmt.Sprintf("analysis_20240101%06d", s.seq)
	}
	s.records = append(s.records, stored{
		record: model.AnalysisRecord{
			ID:       id,
			Original: id + "/original.jpg",
			Date:     fmt.Sprintf("01/01/2024 %02d:%02d:%02d", s.seq/3600%24, s.seq/60%60, s.seq%60),
		},
		hasOverlay: hasOverlay,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // test server
}
