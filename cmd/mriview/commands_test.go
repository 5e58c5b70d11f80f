package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/mriview/internal/apitest"
	"github.com/nao1215/mriview/internal/workflow"
)

func TestAnalyzeCmd(t *testing.T) {
	t.Parallel()

	t.Run("tumor result", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "analyze", scanFile(t))
		if res.err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", res.err, res.stderr)
		}
		for _, want := range []string{"scan.jpg", "Tumor detected (confidence: 87.34%)", "mask.png?t=", "overlay.png?t="} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("stdout does not contain %q\n%s", want, res.stdout)
			}
		}
		if !strings.Contains(res.stderr, "Analyzing image...") {
			t.Errorf("stderr should show the loading indicator, got %q", res.stderr)
		}
		if got := svc.Count(apitest.RoutePredict); got != 1 {
			t.Errorf("predict requests = %d, want 1", got)
		}
		if got := svc.Count(apitest.RouteHistory); got != 1 {
			t.Errorf("history should be refreshed once after a result, got %d", got)
		}
	})

	t.Run("verbose report shows the file digest", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "analyze", "-v", scanFile(t))
		if res.err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", res.err, res.stderr)
		}
		if !strings.Contains(res.stdout, "SHA3-256:") {
			t.Errorf("stdout does not contain the digest\n%s", res.stdout)
		}
	})

	t.Run("no tumor result as json with history", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithOutcome(apitest.Outcome{HasTumor: false, Accuracy: 0.95}))
		res := runCLI(t, svc, "", "analyze", "--json", "--history", scanFile(t))
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		for _, want := range []string{`"diagnosisClass": "no-tumor"`, `"confidence": "95.00%"`, `"state": "populated"`} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("stdout does not contain %q\n%s", want, res.stdout)
			}
		}
		if strings.Contains(res.stdout, "maskUrl") {
			t.Errorf("mask must be hidden without a tumor:\n%s", res.stdout)
		}
	})

	t.Run("disallowed type never reaches the service", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		path := apitest.WriteFile(t, "notes.txt", []byte("not an image"))
		res := runCLI(t, svc, "", "analyze", path)
		if !errors.Is(res.err, errReported) {
			t.Fatalf("error = %v, want errReported", res.err)
		}
		if !strings.Contains(res.stdout, workflow.InvalidTypeMessage) {
			t.Errorf("stdout does not contain the validation message:\n%s", res.stdout)
		}
		if got := svc.Count(apitest.RoutePredict); got != 0 {
			t.Errorf("predict requests = %d, want 0", got)
		}
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		svc.FailPredict(http.StatusInternalServerError, "")
		res := runCLI(t, svc, "", "analyze", scanFile(t))
		if !errors.Is(res.err, errReported) {
			t.Fatalf("error = %v, want errReported", res.err)
		}
		if !strings.Contains(res.stdout, "Error: Server error: 500") {
			t.Errorf("stdout does not contain the transport error:\n%s", res.stdout)
		}
		if got := svc.Count(apitest.RouteHistory); got != 0 {
			t.Errorf("history must not be refreshed after a failure, got %d requests", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "analyze", filepath.Join(t.TempDir(), "missing.jpg"))
		if res.err == nil || !strings.Contains(res.err.Error(), "failed to read image") {
			t.Errorf("error = %v, want a read failure", res.err)
		}
	})
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists records newest first", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t,
			apitest.WithRecord("analysis_old", false),
			apitest.WithRecord("analysis_new", true),
		)
		res := runCLI(t, svc, "", "history")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		iNew := strings.Index(res.stdout, "analysis_new")
		iOld := strings.Index(res.stdout, "analysis_old")
		if iNew < 0 || iOld < 0 || iNew > iOld {
			t.Errorf("unexpected order:\n%s", res.stdout)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "history")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stdout, "No analysis history found") {
			t.Errorf("stdout:\n%s", res.stdout)
		}
	})

	t.Run("service error", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		svc.FailHistory(http.StatusInternalServerError, "database unavailable")
		res := runCLI(t, svc, "", "history")
		if !errors.Is(res.err, errReported) {
			t.Fatalf("error = %v, want errReported", res.err)
		}
		if !strings.Contains(res.stdout, "Error loading history: database unavailable") {
			t.Errorf("stdout:\n%s", res.stdout)
		}
	})
}

func TestShowCmd(t *testing.T) {
	t.Parallel()

	t.Run("analysis with overlay has three panels", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		res := runCLI(t, svc, "", "show", "analysis_a")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		for _, want := range []string{"Original MRI", "Segmentation Mask", "Tumor Detection"} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("stdout does not contain %q\n%s", want, res.stdout)
			}
		}
	})

	t.Run("analysis without overlay shows the placeholder", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_b", false))
		res := runCLI(t, svc, "", "show", "analysis_b")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stdout, "No tumor detected in this analysis") {
			t.Errorf("stdout:\n%s", res.stdout)
		}
		if strings.Contains(res.stdout, "Segmentation Mask") {
			t.Errorf("mask panel must be hidden:\n%s", res.stdout)
		}
	})

	t.Run("by history number", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t,
			apitest.WithRecord("analysis_old", false),
			apitest.WithRecord("analysis_new", false),
		)
		res := runCLI(t, svc, "", "show", "1")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stdout, "analysis_new") {
			t.Errorf("1 should open the newest analysis:\n%s", res.stdout)
		}
	})

	t.Run("number out of range", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", false))
		res := runCLI(t, svc, "", "show", "5")
		if res.err == nil || !strings.Contains(res.err.Error(), "no analysis #5") {
			t.Errorf("error = %v, want out of range", res.err)
		}
	})

	t.Run("ambiguous probe failure hides the overlay", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		svc.SetProbeStatus("analysis_a", http.StatusInternalServerError)
		res := runCLI(t, svc, "", "show", "analysis_a")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if strings.Contains(res.stdout, "Segmentation Mask") {
			t.Errorf("mask panel must be hidden when the probe fails:\n%s", res.stdout)
		}
	})

	t.Run("save downloads every shown image", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		dir := t.TempDir()
		res := runCLI(t, svc, "", "show", "analysis_a", "--save="+dir)
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		for _, name := range []string{"original.jpg", "mask.png", "overlay.png"} {
			path := filepath.Join(dir, "analysis_a", name)
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Errorf("expected %s to be saved: %v", path, err)
			}
		}
		if !strings.Contains(res.stdout, "SAVED") {
			t.Errorf("stdout should list saved files:\n%s", res.stdout)
		}
	})

	t.Run("save without overlay downloads the original only", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_b", false))
		dir := t.TempDir()
		res := runCLI(t, svc, "", "show", "analysis_b", "--save="+dir)
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if _, err := os.Stat(filepath.Join(dir, "analysis_b", "original.jpg")); err != nil {
			t.Errorf("original not saved: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "analysis_b", "mask.png")); !os.IsNotExist(err) {
			t.Errorf("mask should not be saved, stat error = %v", err)
		}
	})
}

func TestDeleteCmd(t *testing.T) {
	t.Parallel()

	t.Run("confirmed with --yes", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		res := runCLI(t, svc, "", "delete", "--yes", "analysis_a")
		if res.err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", res.err, res.stderr)
		}
		if len(svc.Records()) != 0 {
			t.Errorf("records = %v, want none", svc.Records())
		}
		if !strings.Contains(res.stderr, workflow.DeleteSuccessMessage) {
			t.Errorf("stderr should confirm the deletion, got %q", res.stderr)
		}
		if got := svc.Count(apitest.RouteHistory); got != 1 {
			t.Errorf("history should be refreshed once after deletion, got %d", got)
		}
	})

	t.Run("confirmed at the prompt", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		res := runCLI(t, svc, "y\n", "delete", "analysis_a")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stderr, workflow.DeletePrompt) {
			t.Errorf("stderr should show the prompt, got %q", res.stderr)
		}
		if len(svc.Records()) != 0 {
			t.Error("record should be deleted")
		}
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_a", true))
		res := runCLI(t, svc, "n\n", "delete", "analysis_a")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if got := svc.Count(apitest.RouteDelete); got != 0 {
			t.Errorf("delete requests = %d, want 0", got)
		}
		if !strings.Contains(res.stderr, "Deletion cancelled") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})

	t.Run("unknown analysis", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "", "delete", "-y", "analysis_missing")
		if !errors.Is(res.err, errReported) {
			t.Fatalf("error = %v, want errReported", res.err)
		}
		if !strings.Contains(res.stderr, "Error: Analysis not found") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})
}

func TestShellCmd(t *testing.T) {
	t.Parallel()

	t.Run("analyze, open and delete in one session", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t, apitest.WithRecord("analysis_seed", false))
		script := strings.Join([]string{
			"select " + scanFile(t),
			"analyze",
			"history",
			"open 1",
			"state",
			"delete",
			"y",
			"close",
			"bogus",
			"quit",
		}, "\n") + "\n"

		res := runCLI(t, svc, script, "shell")
		if res.err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", res.err, res.stderr)
		}

		for _, want := range []string{
			"1 analyses in history",
			"Selected scan.jpg (image/jpeg",
			workflow.DeleteSuccessMessage,
			"detail: ",
			`unknown command "bogus"`,
		} {
			if !strings.Contains(res.stderr, want) {
				t.Errorf("stderr does not contain %q\n%s", want, res.stderr)
			}
		}
		if !strings.Contains(res.stdout, "Tumor detected (confidence: 87.34%)") {
			t.Errorf("stdout should contain the analysis result:\n%s", res.stdout)
		}

		records := svc.Records()
		if len(records) != 1 || records[0].ID != "analysis_seed" {
			t.Errorf("only the seeded analysis should remain, got %v", records)
		}
	})

	t.Run("end of input leaves the shell", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "help\n", "shell")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stderr, "select <path>") {
			t.Errorf("help should be printed:\n%s", res.stderr)
		}
	})

	t.Run("delete with nothing open", func(t *testing.T) {
		t.Parallel()

		svc := apitest.New(t)
		res := runCLI(t, svc, "delete\nquit\n", "shell")
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if !strings.Contains(res.stderr, "Error: no analysis is open") {
			t.Errorf("stderr:\n%s", res.stderr)
		}
	})
}
