package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrDomain matches every *DomainError.
	ErrDomain = errors.New("service reported an error")

	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("request timed out")

	// ErrMalformedResponse is returned when a body is not the JSON shape the
	// endpoint is documented to return.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrProbeAmbiguous marks an overlay probe that failed with a status other
	// than "not found". Such a failure is reported as "no overlay" all the same,
	// because the service offers no way to tell the two apart.
	ErrProbeAmbiguous = errors.New("overlay probe failed for a reason other than absence")
)

// ValidationError is a local input error. It never reaches the network.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given user-facing message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError is a non-success HTTP status or a network failure.
type TransportError struct {
	// Op is the endpoint operation ("predict", "history", "delete", "probe", "download").
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying network error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Server error: %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Server error"
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DomainError is a well-formed response that carries an "error" field.
type DomainError struct {
	Op      string
	Message string

	// StatusCode is the HTTP status the message arrived with.
	StatusCode int
}

func (e *DomainError) Error() string { return e.Message }

// Is reports whether target is ErrDomain.
func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// TimeoutError is returned when a request exceeds its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out after %s", e.Op, e.Timeout)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Unwrap returns context.DeadlineExceeded.
func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// isSuccess reports whether the status is 2xx.
func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
