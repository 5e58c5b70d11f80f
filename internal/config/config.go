package config

import (
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is where the analysis service listens when started locally.
	DefaultBaseURL = "http://127.0.0.1:5001"

	// DefaultPredictPath is the analysis endpoint of current deployments.
	// Older deployments serve the same endpoint at LegacyPredictPath.
	DefaultPredictPath = "/api/predict"

	// LegacyPredictPath is the analysis endpoint of older deployments.
	LegacyPredictPath = "/predict"

	// DefaultTimeout bounds every request except the overlay probe. Model
	// inference on a CPU-only host can take tens of seconds.
	DefaultTimeout = 60 * time.Second

	// DefaultProbeTimeout bounds the overlay existence probe.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultMaxUploadSize matches the upload limit of the service.
	DefaultMaxUploadSize = 16 << 20

	// AppName is the application name used for XDG directory paths.
	AppName = "mriview"

	// DefaultUserAgent identifies mriview in HTTP requests.
	DefaultUserAgent = "mriview/1.0 (+https://github.com/nao1215/mriview)"
)

// Config holds all configuration options for mriview.
// It is populated once at startup and passed to the commands.
type Config struct {
	// BaseURL is the scheme, host and optional path prefix of the analysis service.
	BaseURL string

	// PredictPath is DefaultPredictPath or LegacyPredictPath.
	PredictPath string

	// Timeout is the deadline of predict, history, delete and download requests.
	Timeout time.Duration

	// ProbeTimeout is the deadline of the overlay existence probe.
	ProbeTimeout time.Duration

	// Headers are added to every request, e.g. an API key or
	// "ngrok-skip-browser-warning" for tunnelled deployments.
	Headers map[string]string

	// ProxyAddress routes all connections through a SOCKS5 proxy ("host:port").
	// Empty means a direct connection.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxUploadSize rejects larger files before upload. Zero disables the check.
	MaxUploadSize int64

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool

	// JSONOutput prints results as JSON. Mutually exclusive with MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput prints results as Markdown. Mutually exclusive with JSONOutput.
	MarkdownOutput bool

	// OutputFile receives the report instead of stdout.
	OutputFile string

	// AssumeYes answers every confirmation prompt with yes.
	AssumeYes bool

	// ConfigFilePath is the YAML file to load. Empty means search the default
	// locations; see FindConfigFile.
	ConfigFilePath string

	// EnvFile is the .env file to load. A missing default .env is not an error.
	EnvFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		PredictPath:   DefaultPredictPath,
		Timeout:       DefaultTimeout,
		ProbeTimeout:  DefaultProbeTimeout,
		Headers:       map[string]string{},
		UserAgent:     DefaultUserAgent,
		MaxUploadSize: DefaultMaxUploadSize,
		EnvFile:       DefaultEnvFile,
	}
}

// XDGConfigDir returns the XDG config directory for mriview.
// On Linux: ~/.config/mriview
// On macOS: ~/Library/Application Support/mriview
// On Windows: %APPDATA%\mriview
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the config file looked up in XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// DownloadDir returns the default directory for saved artifacts,
// e.g. ~/Downloads/mriview.
func DownloadDir() string {
	return filepath.Join(xdg.UserDirs.Download, AppName)
}

// Validate checks if the configuration is valid and returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.PredictPath != DefaultPredictPath && c.PredictPath != LegacyPredictPath {
		return ErrInvalidPredictPath
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}

	if c.MaxUploadSize < 0 {
		return ErrInvalidMaxUploadSize
	}

	if c.ProxyAddress != "" {
		if _, port, err := net.SplitHostPort(c.ProxyAddress); err != nil || port == "" {
			return ErrInvalidProxyAddress
		}
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}

	return nil
}
