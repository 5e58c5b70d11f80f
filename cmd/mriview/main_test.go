package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/mriview/internal/apitest"
)

// cliResult captures one run of the root command.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes mriview against svc with a private config file and no
// .env file, feeding stdin to prompts.
func runCLI(t *testing.T, svc *apitest.Service, stdin string, args ...string) cliResult {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "mriview.yaml")
	if err := os.WriteFile(cfgPath, []byte("baseURL: "+svc.URL()+"\ntimeout: 5s\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath, "--env-file", ""}, args...))

	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func scanFile(t *testing.T) string {
	t.Helper()
	return apitest.WriteFile(t, "scan.jpg", apitest.PixelJPEG)
}
