package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
)

// RequestIDHeader carries a per-request UUID so that client and service logs
// can be correlated.
const RequestIDHeader = "X-Request-ID"

// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// newTransport creates the base transport. When proxyAddress is set, all
// connections are dialed through that SOCKS5 proxy.
func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyAddress == "" {
		return transport, nil
	}

	if _, port, err := net.SplitHostPort(proxyAddress); err != nil || port == "" {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// headerInjectingTransport wraps an http.RoundTripper to add the configured
// headers, the User-Agent and a request ID to every request, and to log the
// exchange at debug level.
type headerInjectingTransport struct {
	base      http.RoundTripper
	headers   map[string]string
	userAgent string
	logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	requestID := clone.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		clone.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(clone)
	elapsed := time.Since(start)

	if err != nil {
		t.logger.Debug("request failed",
			"method", clone.Method,
			"path", clone.URL.Path,
			"request_id", requestID,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("request completed",
		"method", clone.Method,
		"path", clone.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", elapsed,
	)
	return resp, nil
}

// canonicalHeaders drops empty header names and trims whitespace.
func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[http.CanonicalHeaderKey(k)] = strings.TrimSpace(v)
	}
	return out
}
