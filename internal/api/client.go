package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// Service paths.
const (
	PredictPath       = "/api/predict"
	LegacyPredictPath = "/predict"
	HistoryPath       = "/api/history"
	DeletePath        = "/api/delete"
)

// Defaults applied by NewClient.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultProbeTimeout = 10 * time.Second

	// maxResponseBody bounds JSON bodies read into memory.
	maxResponseBody = 4 << 20
)

// ErrInvalidPredictPath is returned by WithPredictPath for unknown paths.
var ErrInvalidPredictPath = errors.New("invalid predict path: must be /api/predict or /predict")

// ProbeResult is the outcome of an overlay existence probe.
type ProbeResult struct {
	// Present is true when the overlay was served successfully.
	Present bool

	// StatusCode is the probe response status.
	StatusCode int

	// Ambiguous is true when the probe failed with a status other than
	// 404/410. Present is false in that case as well.
	Ambiguous bool
}

// Client talks to the remote analysis service.
type Client struct {
	resolver     *artifact.Resolver
	httpClient   *http.Client
	logger       *slog.Logger
	predictPath  string
	timeout      time.Duration
	probeTimeout time.Duration
	headers      map[string]string
	userAgent    string
	proxyAddress string
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the HTTP client. Headers, the User-Agent and the
// request ID are still injected around its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithTimeout sets the deadline applied to predict, history, delete and download calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithProbeTimeout sets the deadline applied to overlay probes.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.probeTimeout = d
		return nil
	}
}

// WithPredictPath selects between the /api/predict and /predict deployments.
func WithPredictPath(p string) Option {
	return func(c *Client) error {
		if p != PredictPath && p != LegacyPredictPath {
			return ErrInvalidPredictPath
		}
		c.predictPath = p
		return nil
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		c.headers = canonicalHeaders(headers)
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithProxy routes all connections through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(c *Client) error {
		c.proxyAddress = address
		return nil
	}
}

// NewClient creates a Client for the service the resolver points at.
func NewClient(resolver *artifact.Resolver, opts ...Option) (*Client, error) {
	c := &Client{
		resolver:     resolver,
		predictPath:  PredictPath,
		timeout:      DefaultTimeout,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	var base http.RoundTripper
	if c.httpClient != nil && c.httpClient.Transport != nil {
		base = c.httpClient.Transport
	} else {
		t, err := newTransport(c.proxyAddress)
		if err != nil {
			return nil, err
		}
		base = t
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		*hc = *c.httpClient
	}
	hc.Transport = &headerInjectingTransport{
		base:      base,
		headers:   c.headers,
		userAgent: c.userAgent,
		logger:    c.logger,
	}
	c.httpClient = hc
	return c, nil
}

// Predict uploads file for analysis.
func (c *Client) Predict(ctx context.Context, file *model.ImageFile) (*model.AnalysisResult, error) {
	const op = "predict"

	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolver.Endpoint(c.predictPath), body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	status, data, err := c.do(ctx, op, c.timeout, req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &TransportError{Op: op, StatusCode: status}
	}
	if msg, ok := errorField(data); ok {
		return nil, &DomainError{Op: op, Message: msg, StatusCode: status}
	}

	var resp model.PredictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	if resp.Images.Original == "" {
		return nil, fmt.Errorf("%w: %s: missing images.original", ErrMalformedResponse, op)
	}

	result := resp.Result()
	return &result, nil
}

// History fetches the list of past analyses.
func (c *Client) History(ctx context.Context) ([]model.AnalysisRecord, error) {
	const op = "history"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolver.Endpoint(HistoryPath), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	status, data, err := c.do(ctx, op, c.timeout, req)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		if !isSuccess(status) {
			return nil, &TransportError{Op: op, StatusCode: status}
		}
		return nil, fmt.Errorf("%w: %s: body is not JSON", ErrMalformedResponse, op)
	}
	if msg, ok := errorField(data); ok {
		return nil, &DomainError{Op: op, Message: msg, StatusCode: status}
	}
	if !isSuccess(status) {
		return nil, &TransportError{Op: op, StatusCode: status}
	}
	if !gjson.GetBytes(data, "analyses").IsArray() {
		return nil, fmt.Errorf("%w: %s: missing analyses", ErrMalformedResponse, op)
	}

	var resp model.HistoryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	if resp.Analyses == nil {
		resp.Analyses = []model.AnalysisRecord{}
	}
	return resp.Analyses, nil
}

// Delete removes analysis id on the server. The body decides the outcome:
// a failing status that still carries {"error": ...} is a *DomainError.
func (c *Client) Delete(ctx context.Context, id string) error {
	const op = "delete"

	if !artifact.ValidID(id) {
		return invalidID(id)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.resolver.Endpoint(DeletePath, id), nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	status, data, err := c.do(ctx, op, c.timeout, req)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		if !isSuccess(status) {
			return &TransportError{Op: op, StatusCode: status}
		}
		return fmt.Errorf("%w: %s: body is not JSON", ErrMalformedResponse, op)
	}

	var resp model.DeleteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	if resp.Success {
		return nil
	}
	if msg, ok := errorField(data); ok {
		return &DomainError{Op: op, Message: msg, StatusCode: status}
	}
	if !isSuccess(status) {
		return &TransportError{Op: op, StatusCode: status}
	}
	return &DomainError{Op: op, Message: "Unknown error", StatusCode: status}
}

// ProbeOverlay checks whether the overlay artifact of analysis id exists.
// Only the response status matters; the body is discarded. A network failure
// or timeout is returned as an error.
func (c *Client) ProbeOverlay(ctx context.Context, id string) (ProbeResult, error) {
	const op = "probe"

	if !artifact.ValidID(id) {
		return ProbeResult{}, invalidID(id)
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolver.ProbeURL(id), nil)
	if err != nil {
		return ProbeResult{}, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ProbeResult{}, c.classify(ctx, op, c.probeTimeout, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody)) //nolint:errcheck // body is ignored

	result := ProbeResult{StatusCode: resp.StatusCode, Present: isSuccess(resp.StatusCode)}
	if !result.Present && resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusGone {
		result.Ambiguous = true
		c.logger.Warn("overlay probe inconclusive, treating as absent",
			"analysis_id", id,
			"status", resp.StatusCode,
			"error", ErrProbeAmbiguous,
		)
	}
	return result, nil
}

// Download streams rawURL into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	const op = "download"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.classify(ctx, op, c.timeout, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return 0, &TransportError{Op: op, StatusCode: resp.StatusCode}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, c.classify(ctx, op, c.timeout, err)
	}
	return n, nil
}

// do sends req and reads the whole (bounded) body.
func (c *Client) do(ctx context.Context, op string, timeout time.Duration, req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.classify(ctx, op, timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, c.classify(ctx, op, timeout, err)
	}
	return resp.StatusCode, bytes.TrimSpace(data), nil
}

// classify maps a request error to *TimeoutError or *TransportError.
func (c *Client) classify(ctx context.Context, op string, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Timeout: timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Timeout: timeout}
	}
	return &TransportError{Op: op, Err: err}
}

// errorField returns the "error" member of a JSON body when it is present and
// truthy (not null, false, or the empty string).
func errorField(data []byte) (string, bool) {
	field := gjson.GetBytes(data, "error")
	if !field.Exists() {
		return "", false
	}
	switch field.Type {
	case gjson.Null, gjson.False:
		return "", false
	case gjson.String:
		return field.String(), field.String() != ""
	case gjson.Number:
		return field.Raw, field.Float() != 0
	default:
		return field.Raw, true
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody encodes file as the "file" field of a multipart form.
func multipartBody(file *model.ImageFile) (*bytes.Buffer, string, error) {
	if file == nil || file.Open == nil {
		return nil, "", NewValidationError("Please select an image first")
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(norm.NFC.String(file.Name))))
	header.Set("Content-Type", file.MediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func invalidID(id string) error {
	return NewValidationError(fmt.Sprintf("Invalid analysis id %q", id))
}
