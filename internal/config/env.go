package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is the .env file read from the current directory.
const DefaultEnvFile = ".env"

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL       = "MRIVIEW_BASE_URL"
	EnvPredictPath   = "MRIVIEW_PREDICT_PATH"
	EnvTimeout       = "MRIVIEW_TIMEOUT"
	EnvProbeTimeout  = "MRIVIEW_PROBE_TIMEOUT"
	EnvProxy         = "MRIVIEW_PROXY"
	EnvUserAgent     = "MRIVIEW_USER_AGENT"
	EnvMaxUploadSize = "MRIVIEW_MAX_UPLOAD_SIZE"
	EnvVerbose       = "MRIVIEW_VERBOSE"

	// EnvHeaders holds comma-separated Name=Value pairs.
	EnvHeaders = "MRIVIEW_HEADERS"
)

// LookupFunc returns the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadEnv applies MRIVIEW_* variables to cfg. Values come from the process
// environment and, with lower precedence, from cfg.EnvFile. A missing env
// file is ignored.
func LoadEnv(cfg *Config) error {
	fileValues := map[string]string{}
	if cfg.EnvFile != "" {
		values, err := godotenv.Read(cfg.EnvFile)
		switch {
		case err == nil:
			fileValues = values
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("failed to read %s: %w", cfg.EnvFile, err)
		}
	}

	return ApplyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	})
}

// ApplyEnv applies the MRIVIEW_* variables returned by lookup to cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvPredictPath); ok && v != "" {
		cfg.PredictPath = v
	}
	if v, ok := lookup(EnvProxy); ok {
		cfg.ProxyAddress = v
	}
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		cfg.UserAgent = v
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvProbeTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvProbeTimeout, v, err)
		}
		cfg.ProbeTimeout = d
	}
	if v, ok := lookup(EnvMaxUploadSize); ok && v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxUploadSize, v, err)
		}
		cfg.MaxUploadSize = int64(n) //nolint:gosec // sizes beyond int64 are not meaningful here
	}
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvVerbose, v, err)
		}
		cfg.Verbose = b
	}

	if v, ok := lookup(EnvHeaders); ok && v != "" {
		headers, err := ParseHeaders(strings.Split(v, ","))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeaders, err)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, val := range headers {
			cfg.Headers[k] = val
		}
	}
	return nil
}

// ErrInvalidHeader is returned by ParseHeaders for an entry without "=" or name.
var ErrInvalidHeader = errors.New("invalid header: expected Name=Value")

// ParseHeaders parses Name=Value pairs, as given to --header or MRIVIEW_HEADERS.
func ParseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, pair)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
