package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// TokenSource yields the bearer credential for outbound requests. The
// session store satisfies it; nil means an anonymous call.
type TokenSource interface {
	Token() string
}

// StatusError is a non-2xx response from the backend, carrying the status
// code so callers can apply the 401/403 vs 404 vs transient taxonomy.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.Code)
}

// ErrMalformedResponse means the body had no recognizable user or token
// shape. Callers decide whether that is fatal.
var ErrMalformedResponse = errors.New("no recognizable shape in upstream response")

// StatusOf extracts the HTTP status from err, or 0 for transport errors.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsAuthError reports whether err is a 401 or 403 from the backend.
func IsAuthError(err error) bool {
	code := StatusOf(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// Client wraps calls to the SiPAS REST backend. Every request attaches
// the bearer token when the source yields one. On a 401 the configured
// hook runs before the error is returned; the hook evicts the whole
// session, unconditionally, no matter which call tripped it.
type Client struct {
	base           string
	http           *http.Client
	onUnauthorized func(src TokenSource)
	logger         *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithOnUnauthorized installs the global 401 hook.
func WithOnUnauthorized(hook func(src TokenSource)) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout caps outbound request duration. The default is no timeout,
// matching what the old client did; a hung backend stalls only the page
// region that called it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base }

// do performs a JSON request and returns the raw response body. A nil
// src or an empty token sends the request unauthenticated.
func (c *Client) do(ctx context.Context, src TokenSource, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := tokenFrom(src); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(src)
		}
		c.logger.Debug("Upstream error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	return raw, nil
}

// statusOnly issues a request and reports just the status code, without
// tripping the global 401 hook. The endpoint probe treats 401 as "route
// exists", which must not evict the session.
func (c *Client) statusOnly(ctx context.Context, src TokenSource, method, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if tok := tokenFrom(src); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// get is a convenience wrapper decoding the response into out after
// unwrapping an optional data envelope.
func (c *Client) get(ctx context.Context, src TokenSource, path string, out any) error {
	raw, err := c.do(ctx, src, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (c *Client) post(ctx context.Context, src TokenSource, path string, body, out any) error {
	raw, err := c.do(ctx, src, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeInto(raw, out)
}

func (c *Client) put(ctx context.Context, src TokenSource, path string, body, out any) error {
	raw, err := c.do(ctx, src, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeInto(raw, out)
}

func (c *Client) delete(ctx context.Context, src TokenSource, path string) error {
	_, err := c.do(ctx, src, http.MethodDelete, path, nil)
	return err
}

func tokenFrom(src TokenSource) string {
	if src == nil {
		return ""
	}
	return src.Token()
}

// StaticToken adapts a raw token string into a TokenSource. Used where
// only the cookie-mirrored token is available.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
