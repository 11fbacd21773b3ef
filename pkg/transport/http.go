package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/matzehuels/waterwheel/pkg/cache"
	"github.com/matzehuels/waterwheel/pkg/observability"
)

const defaultTimeout = 10 * time.Second

// HTTP implements Transport over net/http.
type HTTP struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
	headers  map[string]string
	retries  uint64
	hooks    observability.HTTPHooks
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTP) { t.http = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTP) { t.http.Timeout = d }
}

// WithHeaders sets default headers applied to all requests.
// Request-specific headers (auth, content type) override them.
func WithHeaders(h map[string]string) Option {
	return func(t *HTTP) {
		for k, v := range h {
			t.headers[k] = v
		}
	}
}

// WithCache enables caching of successful GET responses for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(t *HTTP) {
		t.cache = c
		t.cacheTTL = ttl
	}
}

// WithRetry retries network errors and 5xx responses up to n times with
// exponential backoff. Zero disables retries.
func WithRetry(n uint64) Option {
	return func(t *HTTP) { t.retries = n }
}

// WithHooks sets HTTP hooks; by default the global hooks are used.
func WithHooks(h observability.HTTPHooks) Option {
	return func(t *HTTP) { t.hooks = h }
}

// NewHTTP creates an HTTP transport with a standard timeout, JSON headers
// and no caching.
func NewHTTP(opts ...Option) *HTTP {
	t := &HTTP{
		http:  &http.Client{Timeout: defaultTimeout},
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
		headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get performs a GET, serving from cache when enabled.
func (t *HTTP) Get(ctx context.Context, url string, creds *Credentials) (*Response, error) {
	key := t.cacheKey(url, creds)
	if data, ok, _ := t.cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, key)
		return NewResponse(http.StatusOK, data), nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	resp, err := t.send(ctx, http.MethodGet, url, nil, creds)
	if err != nil {
		return nil, err
	}
	if t.cacheTTL > 0 {
		if err := t.cache.Set(ctx, key, resp.Body, t.cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(resp.Body))
		}
	}
	return resp, nil
}

// Post performs a POST with a JSON body.
func (t *HTTP) Post(ctx context.Context, url string, body any, creds *Credentials) (*Response, error) {
	return t.send(ctx, http.MethodPost, url, body, creds)
}

// Patch performs a PATCH with a JSON body.
func (t *HTTP) Patch(ctx context.Context, url string, body any, creds *Credentials) (*Response, error) {
	return t.send(ctx, http.MethodPatch, url, body, creds)
}

// Delete performs a DELETE.
func (t *HTTP) Delete(ctx context.Context, url string, creds *Credentials) (*Response, error) {
	return t.send(ctx, http.MethodDelete, url, nil, creds)
}

func (t *HTTP) cacheKey(url string, creds *Credentials) string {
	if creds == nil {
		return t.keyer.HTTPKey(http.MethodGet, url)
	}
	scope := cache.Hash([]byte(creds.User + "\x00" + creds.Pass))
	return cache.NewScopedKeyer(t.keyer, "user:"+creds.User+":"+scope[:16]+":").HTTPKey(http.MethodGet, url)
}

func (t *HTTP) send(ctx context.Context, method, rawURL string, body any, creds *Credentials) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	if t.retries == 0 {
		return t.do(ctx, method, rawURL, payload, creds)
	}

	op := func() (*Response, error) {
		resp, err := t.do(ctx, method, rawURL, payload, creds)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), t.retries), ctx)
	return backoff.RetryWithData(op, b)
}

func (t *HTTP) do(ctx context.Context, method, rawURL string, payload []byte, creds *Credentials) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if creds != nil {
		req.SetBasicAuth(creds.User, creds.Pass)
	}

	hooks := t.hooksFor()
	host, path := splitURL(rawURL)
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := t.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			hooks.OnError(ctx, method, host, path, ctx.Err())
			return nil, ctx.Err()
		}
		hooks.OnError(ctx, method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(method, rawURL, resp.StatusCode, data); err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Data:       decodeBody(data),
	}, nil
}

func (t *HTTP) hooksFor() observability.HTTPHooks {
	if t.hooks != nil {
		return t.hooks
	}
	return observability.HTTP()
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}

var _ Transport = (*HTTP)(nil)
