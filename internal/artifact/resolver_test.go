package artifact

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.UnixMilli(1700000000123)
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "http host and port", baseURL: "http://127.0.0.1:5001"},
		{name: "https with path prefix", baseURL: "https://example.ngrok-free.app/app/"},
		{name: "missing scheme", baseURL: "127.0.0.1:5001", wantErr: true},
		{name: "unsupported scheme", baseURL: "ftp://example.com", wantErr: true},
		{name: "empty", baseURL: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewResolver(tt.baseURL)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolverArtifact(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("http://127.0.0.1:5001", WithClock(fixedClock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		kind Kind
		want string
	}{
		{kind: Original, want: "http://127.0.0.1:5001/static/uploads/analysis_1/original.jpg?t=1700000000123"},
		{kind: Mask, want: "http://127.0.0.1:5001/static/uploads/analysis_1/mask.png?t=1700000000123"},
		{kind: Overlay, want: "http://127.0.0.1:5001/static/uploads/analysis_1/overlay.png?t=1700000000123"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			if got := r.Artifact("analysis_1", tt.kind); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolverCacheBustChangesWithTime(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1000)
	r, err := NewResolver("http://localhost", WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := r.Busted("a.jpg")
	now = now.Add(time.Millisecond)
	second := r.Busted("a.jpg")

	if first == second {
		t.Errorf("expected different URLs, both were %q", first)
	}

	u, err := url.Parse(second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Query().Get(CacheBustParam) != "1001" {
		t.Errorf("expected t=1001, got %q", u.RawQuery)
	}
}

func TestResolverPlainURLs(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("https://svc.example/prefix/", WithClock(fixedClock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("probe URL has no cache-busting token", func(t *testing.T) {
		t.Parallel()
		got := r.ProbeURL("analysis_2")
		if got != "https://svc.example/prefix/static/uploads/analysis_2/overlay.png" {
			t.Errorf("unexpected probe URL %q", got)
		}
	})

	t.Run("upload path keeps base prefix", func(t *testing.T) {
		t.Parallel()
		got := r.Upload("analysis_2/original.jpg")
		if got != "https://svc.example/prefix/static/uploads/analysis_2/original.jpg" {
			t.Errorf("unexpected upload URL %q", got)
		}
	})

	t.Run("endpoint with segment", func(t *testing.T) {
		t.Parallel()
		got := r.Endpoint("/api/delete", "analysis_2")
		if got != "https://svc.example/prefix/api/delete/analysis_2" {
			t.Errorf("unexpected endpoint %q", got)
		}
	})

	t.Run("endpoint keeps a slash inside its segment", func(t *testing.T) {
		t.Parallel()
		got := r.Endpoint("/api/delete", "a/../../history")
		if got != "https://svc.example/prefix/api/delete/a%2F..%2F..%2Fhistory" {
			t.Errorf("unexpected endpoint %q", got)
		}
	})

	t.Run("upload path cannot leave the uploads directory", func(t *testing.T) {
		t.Parallel()
		got := r.Upload("a/../../../api/history")
		if got != "https://svc.example/prefix/static/uploads/api/history" {
			t.Errorf("unexpected upload URL %q", got)
		}
		if got := r.ProbeURL("../../api"); got != "https://svc.example/prefix/static/uploads/api/overlay.png" {
			t.Errorf("unexpected probe URL %q", got)
		}
	})

	t.Run("endpoint escapes spaces", func(t *testing.T) {
		t.Parallel()
		got := r.Endpoint("/api/delete", "a b")
		if !strings.HasSuffix(got, "/api/delete/a%20b") {
			t.Errorf("unexpected endpoint %q", got)
		}
	})
}

func TestValidID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{id: "analysis_20240131120000", want: true},
		{id: "a b", want: true},
		{id: "", want: false},
		{id: ".", want: false},
		{id: "..", want: false},
		{id: "a/b", want: false},
		{id: `a\b`, want: false},
		{id: "a/../../history", want: false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestKindFileName(t *testing.T) {
	t.Parallel()

	if Original.FileName() != "original.jpg" || Mask.FileName() != "mask.png" || Overlay.FileName() != "overlay.png" {
		t.Error("unexpected artifact file names")
	}
	if Kind(42).FileName() != "" {
		t.Error("expected empty file name for unknown kind")
	}
}
