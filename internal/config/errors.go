package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidPredictPath is returned for a predict path other than /api/predict or /predict.
	ErrInvalidPredictPath = errors.New("invalid predict path: must be /api/predict or /predict")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProbeTimeout is returned when the probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidMaxUploadSize is returned when the upload limit is negative.
	// Use 0 to disable the limit.
	ErrInvalidMaxUploadSize = errors.New("invalid max upload size: must be non-negative")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrConflictingOutputFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")
)
