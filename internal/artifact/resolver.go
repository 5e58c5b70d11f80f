package artifact

import (
	"errors"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// UploadsPath is the static path under which the service serves analysis images.
const UploadsPath = "/static/uploads"

// CacheBustParam is the query parameter used for cache busting.
const CacheBustParam = "t"

// Kind identifies one of the three images of an analysis.
type Kind int

const (
	// Original is the submitted image.
	Original Kind = iota

	// Mask is the segmentation mask.
	Mask

	// Overlay is the original with the detected region highlighted.
	Overlay
)

// FileName returns the fixed file name of the artifact inside its analysis folder.
func (k Kind) FileName() string {
	switch k {
	case Original:
		return "original.jpg"
	case Mask:
		return "mask.png"
	case Overlay:
		return "overlay.png"
	default:
		return ""
	}
}

// String returns the artifact kind name.
func (k Kind) String() string {
	switch k {
	case Original:
		return "original"
	case Mask:
		return "mask"
	case Overlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Kinds lists all artifact kinds in display order.
var Kinds = []Kind{Original, Mask, Overlay}

// ErrInvalidBaseURL is returned when the service base URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid base URL: expected absolute http(s) URL")

// Resolver builds artifact URLs against a service base URL.
type Resolver struct {
	base *url.URL
	now  func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock replaces the time source used for cache-busting tokens.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a Resolver for the service at baseURL.
func NewResolver(baseURL string, opts ...ResolverOption) (*Resolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, ErrInvalidBaseURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	r := &Resolver{base: u, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Upload returns the plain URL of an upload-relative path such as
// "analysis_20240131120000/original.jpg". Dot segments in relPath cannot
// leave the uploads directory.
func (r *Resolver) Upload(relPath string) string {
	u := *r.base
	u.Path = r.uploadPath(relPath)
	return u.String()
}

// Busted returns the cache-busted URL of an upload-relative path.
func (r *Resolver) Busted(relPath string) string {
	u := *r.base
	u.Path = r.uploadPath(relPath)
	u.RawQuery = url.Values{CacheBustParam: {r.token()}}.Encode()
	return u.String()
}

// Artifact returns the cache-busted URL of an artifact of analysis id.
func (r *Resolver) Artifact(id string, kind Kind) string {
	return r.Busted(RelPath(id, kind))
}

// ProbeURL returns the plain overlay URL used for the existence probe.
func (r *Resolver) ProbeURL(id string) string {
	return r.Upload(RelPath(id, Overlay))
}

// Endpoint returns the absolute URL of a service API path such as
// "/api/history", with optional trailing path segments. Each segment is
// escaped as a whole, so a "/" inside one stays inside it.
func (r *Resolver) Endpoint(apiPath string, segments ...string) string {
	u := *r.base
	u.Path = path.Join(u.Path, apiPath)
	u.RawPath = ""
	if len(segments) == 0 {
		return u.String()
	}

	raw := u.EscapedPath()
	for _, seg := range segments {
		u.Path += "/" + seg
		raw += "/" + url.PathEscape(seg)
	}
	u.RawPath = raw
	return u.String()
}

// Base returns the service base URL.
func (r *Resolver) Base() string {
	return r.base.String()
}

// ValidID reports whether id can name an analysis: one non-empty path
// segment other than "." and "..".
func ValidID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// RelPath returns the upload-relative path of an artifact of analysis id.
func RelPath(id string, kind Kind) string {
	return path.Join(id, kind.FileName())
}

func (r *Resolver) uploadPath(relPath string) string {
	return path.Join(r.base.Path, UploadsPath, path.Clean("/"+relPath))
}

func (r *Resolver) token() string {
	return strconv.FormatInt(r.now().UnixMilli(), 10)
}
