package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/mriview/internal/api"
	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/render"
)

// Validation messages.
const (
	MissingFileMessage    = "Please select an image first"
	InvalidTypeMessage    = "Only PNG, JPEG or JPG images are allowed"
	unknownFailureMessage = "Unknown error"
)

// AllowedMediaTypes are the media types accepted for submission.
var AllowedMediaTypes = []string{"image/png", "image/jpeg", "image/jpg"}

// ErrSubmissionInFlight is returned by Submit while another submission is loading.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Submitter drives the submission area through Idle, Loading, Result and
// Failed. Only one submission can be in flight.
type Submitter struct {
	svc      Predictor
	resolver *artifact.Resolver
	view     SubmissionView
	history  Refresher
	bg       *Background
	logger   *slog.Logger
	maxSize  int64

	// renderMu orders renders; it is taken before mu and held across the
	// view call so views may read the controller.
	renderMu sync.Mutex
	mu       sync.Mutex
	file     *model.ImageFile
	phase    model.Phase
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithSubmissionView sets the view that receives phase changes.
func WithSubmissionView(v SubmissionView) SubmitterOption {
	return func(s *Submitter) { s.view = v }
}

// WithHistoryRefresh sets the history list refreshed after a successful
// submission. The refresh runs on bg and is not waited for.
func WithHistoryRefresh(history Refresher, bg *Background) SubmitterOption {
	return func(s *Submitter) {
		s.history = history
		s.bg = bg
	}
}

// WithMaxUploadSize rejects files larger than n bytes before upload.
// Zero disables the check.
func WithMaxUploadSize(n int64) SubmitterOption {
	return func(s *Submitter) { s.maxSize = n }
}

// WithSubmitterLogger sets the logger.
func WithSubmitterLogger(logger *slog.Logger) SubmitterOption {
	return func(s *Submitter) { s.logger = logger }
}

// NewSubmitter creates a Submitter in the Idle phase.
func NewSubmitter(svc Predictor, resolver *artifact.Resolver, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		svc:      svc,
		resolver: resolver,
		view:     discard{},
		logger:   slog.New(slog.DiscardHandler),
		phase:    model.Idle{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectFile stores the candidate file; nil clears the selection. The media
// type is not checked until Submit.
func (s *Submitter) SelectFile(file *model.ImageFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = file
}

// Selected returns the selected file, or nil.
func (s *Submitter) Selected() *model.ImageFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// CanSubmit reports whether a file is selected and no submission is loading.
func (s *Submitter) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil && s.phase.Kind() != model.PhaseLoading
}

// Phase returns the current phase.
func (s *Submitter) Phase() model.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// View returns the current rendering of the submission area.
func (s *Submitter) View() model.SubmissionView {
	return render.Submission(s.Phase(), s.resolver)
}

// Submit validates the selected file, uploads it and ends in exactly one of
// Result or Failed, which it returns. Validation failures never reach the
// network. The only error is ErrSubmissionInFlight, in which case nothing
// changes.
func (s *Submitter) Submit(ctx context.Context) (model.Phase, error) {
	phase, file, err := s.begin()
	if err != nil || phase.Kind() != model.PhaseLoading {
		return phase, err
	}

	phase = s.run(ctx, file)
	if phase.Kind() == model.PhaseResult && s.history != nil && s.bg != nil {
		s.bg.Go(ctx, func(ctx context.Context) {
			s.history.RefreshAfterChange(ctx)
		})
	}
	return phase, nil
}

// begin moves to Loading, or to Failed when the selection does not validate.
func (s *Submitter) begin() (model.Phase, *model.ImageFile, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	if s.phase.Kind() == model.PhaseLoading {
		s.mu.Unlock()
		return nil, nil, ErrSubmissionInFlight
	}
	file := s.file
	var next model.Phase = model.Loading{}
	if err := s.validate(file); err != nil {
		next = model.Failed{Message: err.Error(), Err: err}
	}
	s.phase = next
	s.mu.Unlock()

	s.view.RenderSubmission(render.Submission(next, s.resolver))
	return next, file, nil
}

// run performs the request. The deferred transition leaves Loading on every
// path, including a panic in the service.
func (s *Submitter) run(ctx context.Context, file *model.ImageFile) (phase model.Phase) {
	phase = model.Failed{Message: unknownFailureMessage}
	defer func() { s.setPhase(phase) }()

	result, err := s.svc.Predict(ctx, file)
	if err != nil {
		s.logger.Warn("analysis failed", "file", file.Name, "error", err)
		return model.Failed{Message: err.Error(), Err: err}
	}
	if result == nil {
		return phase
	}
	s.logger.Debug("analysis completed",
		"file", file.Name,
		"has_tumor", result.HasTumor,
		"confidence", result.Confidence,
	)
	return model.Result{Analysis: *result}
}

func (s *Submitter) validate(file *model.ImageFile) error {
	if file == nil {
		return api.NewValidationError(MissingFileMessage)
	}
	if !slices.Contains(AllowedMediaTypes, file.MediaType) {
		return api.NewValidationError(InvalidTypeMessage)
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return api.NewValidationError(fmt.Sprintf("File is too large (%s, limit %s)",
			humanize.IBytes(uint64(file.Size)), humanize.IBytes(uint64(s.maxSize))))
	}
	return nil
}

func (s *Submitter) setPhase(p model.Phase) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()

	s.view.RenderSubmission(render.Submission(p, s.resolver))
}
