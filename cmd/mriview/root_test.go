package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/mriview/internal/apitest"
	"github.com/nao1215/mriview/internal/config"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "mriview" {
			t.Errorf("expected use 'mriview', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"verbose", "log-json", "config", "env-file", "base-url", "predict-path",
			"timeout", "probe-timeout", "header", "proxy", "json", "markdown", "output", "yes",
		} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("missing persistent flag %q", name)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"analyze": false, "history": false, "show": false, "delete": false,
			"shell": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("missing subcommand %q", name)
			}
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "mriview.yaml")
		content := "baseURL: http://file.example:5001\npredictPath: /predict\ntimeout: 30s\nheaders:\n  X-From-File: yes\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{
			"--config", path,
			"--env-file", "",
			"--base-url", "http://flag.example:8080",
			"-H", "X-Api-Key=secret",
		}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.BaseURL != "http://flag.example:8080" {
			t.Errorf("BaseURL = %q", cfg.BaseURL)
		}
		if cfg.PredictPath != config.LegacyPredictPath {
			t.Errorf("PredictPath = %q, want the file value", cfg.PredictPath)
		}
		if cfg.Timeout.String() != "30s" {
			t.Errorf("Timeout = %v, want the file value", cfg.Timeout)
		}
		if cfg.Headers["X-From-File"] != "yes" || cfg.Headers["X-Api-Key"] != "secret" {
			t.Errorf("Headers = %v", cfg.Headers)
		}
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing, "--env-file", ""}); err != nil {
			t.Fatal(err)
		}
		if _, err := buildConfig(cmd); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("buildConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("env file fills unset values", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("MRIVIEW_PROBE_TIMEOUT=3s\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cfgPath := filepath.Join(dir, "mriview.yaml")
		if err := os.WriteFile(cfgPath, []byte("probeTimeout: 20s\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"--config", cfgPath, "--env-file", envPath}); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.ProbeTimeout.String() != "3s" {
			t.Errorf("ProbeTimeout = %v, want the .env value", cfg.ProbeTimeout)
		}
	})
}

func TestOutputOptions(t *testing.T) {
	t.Parallel()

	t.Run("json and markdown conflict", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "history", "--json", "--markdown")
		if !errors.Is(res.err, config.ErrConflictingOutputFormats) {
			t.Errorf("error = %v, want ErrConflictingOutputFormats", res.err)
		}
		if svc.Count(apitest.RouteHistory) != 0 {
			t.Error("no request should be made with an invalid configuration")
		}
	})

	t.Run("output file receives the report", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		path := filepath.Join(t.TempDir(), "out", "history.md")

		res := runCLI(t, svc, "", "history", "--markdown", "-o", path)
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if res.stdout != "" {
			t.Errorf("stdout should be empty, got %q", res.stdout)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(data), "# Analysis History") || !strings.Contains(string(data), "analysis_a") {
			t.Errorf("unexpected output file:\n%s", data)
		}
	})

	t.Run("headers reach the service", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "history", "-H", "X-Api-Key=secret")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if got := svc.LastHeaders().Get("X-Api-Key"); got != "secret" {
			t.Errorf("X-Api-Key = %q, want secret", got)
		}
	})
}
