package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".mriview"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .mriview configuration file.
// Every field is optional; unset fields keep the value they already have.
type File struct {
	BaseURL      string            `yaml:"baseURL,omitempty"`
	PredictPath  string            `yaml:"predictPath,omitempty"`
	Timeout      time.Duration     `yaml:"timeout,omitempty"`
	ProbeTimeout time.Duration     `yaml:"probeTimeout,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Proxy        string            `yaml:"proxy,omitempty"`
	UserAgent    string            `yaml:"userAgent,omitempty"`

	// MaxUploadSize accepts sizes such as "16MiB" or "20 MB".
	MaxUploadSize string `yaml:"maxUploadSize,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies the fields set in the file onto cfg. Headers are merged,
// with the file winning on conflicts.
func (cf *File) Apply(cfg *Config) error {
	if cf.BaseURL != "" {
		cfg.BaseURL = cf.BaseURL
	}
	if cf.PredictPath != "" {
		cfg.PredictPath = cf.PredictPath
	}
	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.ProbeTimeout != 0 {
		cfg.ProbeTimeout = cf.ProbeTimeout
	}
	if cf.Proxy != "" {
		cfg.ProxyAddress = cf.Proxy
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if len(cf.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(cf.Headers))
		}
		maps.Copy(cfg.Headers, cf.Headers)
	}
	if cf.MaxUploadSize != "" {
		n, err := humanize.ParseBytes(cf.MaxUploadSize)
		if err != nil {
			return fmt.Errorf("invalid maxUploadSize %q: %w", cf.MaxUploadSize, err)
		}
		cfg.MaxUploadSize = int64(n) //nolint:gosec // sizes beyond int64 are not meaningful here
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .mriview in the current directory
// 3. Look for .mriview in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigFile())

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
