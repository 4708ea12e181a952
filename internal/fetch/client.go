// Package fetch performs single request/response exchanges, decodes typed
// JSON payloads and classifies outcomes by status-code class.
//
// HTTP-level failures are never returned as errors: the caller receives a
// Result and inspects StatusCode. Only connection-level failures produce a
// *TransportError.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vmunix/vidstash/internal/respcache"
)

const defaultTimeout = 30 * time.Second

// Client fetches endpoints and caches successful responses.
type Client struct {
	doer  Doer
	cache Cache
	log   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client. cache may be nil to disable response caching.
func NewClient(cache Cache, opts ...Option) *Client {
	c := &Client{
		doer:  &http.Client{Timeout: defaultTimeout},
		cache: cache,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "fetch")
	return c
}

// Get issues a GET to endpoint and decodes a 2xx body as T.
// It blocks until the full body has been received.
func Get[T any](ctx context.Context, c *Client, endpoint Endpoint) (*Result[T], error) {
	u, ok := endpoint.URL()
	if !ok {
		c.log.Warn("malformed endpoint", "url", string(endpoint))
		return &Result[T]{StatusCode: StatusUndefined}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &Result[T]{StatusCode: StatusUndefined}, nil
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}

	code := resp.StatusCode
	c.log.Debug("response received", "url", u.String(), "status", code, "bytes", len(body))

	switch {
	case code >= 100 && code < 200:
		return &Result[T]{StatusCode: code}, nil

	case code >= 200 && code < 300:
		c.store(ctx, req, resp, body)
		return &Result[T]{StatusCode: code, Payload: decode[T](c.log, u.String(), body)}, nil

	case code >= 300 && code < 600:
		return &Result[T]{StatusCode: code}, nil

	default:
		return &Result[T]{StatusCode: StatusUndefined}, nil
	}
}

// Cached decodes the last successful response for endpoint from the cache.
// It returns false when nothing usable is cached.
func Cached[T any](ctx context.Context, c *Client, endpoint Endpoint) (*Result[T], bool) {
	if c.cache == nil {
		return nil, false
	}
	u, ok := endpoint.URL()
	if !ok {
		return nil, false
	}
	entry, ok := c.cache.Lookup(ctx, respcache.KeyFor(http.MethodGet, u.String()))
	if !ok {
		return nil, false
	}
	return &Result[T]{
		StatusCode: entry.StatusCode,
		Payload:    decode[T](c.log, u.String(), entry.Body),
	}, true
}

// store caches a successful response. Failures are logged and ignored.
func (c *Client) store(ctx context.Context, req *http.Request, resp *http.Response, body []byte) {
	if c.cache == nil {
		return
	}
	meta := respcache.Metadata{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if err := c.cache.Store(ctx, respcache.Key(req), body, meta); err != nil {
		c.log.Debug("response not cached", "url", req.URL.String(), "error", err)
	}
}

// decode returns nil when body is not a valid T. The request still counts
// as successful.
func decode[T any](log *slog.Logger, url string, body []byte) *T {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		log.Warn("response body did not decode", "url", url, "error", err)
		return nil
	}
	return &v
}
