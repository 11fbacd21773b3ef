package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the remote resource doesn't exist (404).
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Credentials is a user/password pair sent as HTTP basic auth.
type Credentials struct {
	User string `json:"user" toml:"user" mapstructure:"user"`
	Pass string `json:"pass" toml:"pass" mapstructure:"pass"`
}

// Clone returns a copy of c, or nil when c is nil.
func (c *Credentials) Clone() *Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Transport issues HTTP requests on behalf of resource clients.
// Implementations must be safe for concurrent use.
type Transport interface {
	Get(ctx context.Context, url string, creds *Credentials) (*Response, error)
	Post(ctx context.Context, url string, body any, creds *Credentials) (*Response, error)
	Patch(ctx context.Context, url string, body any, creds *Credentials) (*Response, error)
	Delete(ctx context.Context, url string, creds *Credentials) (*Response, error)
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte // raw body, kept for order-sensitive parsing (HAL)
	Data       any    // decoded JSON body; the raw string when not JSON; nil when empty
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode: empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// NewResponse builds a Response from a status and raw body, decoding the
// body the same way the HTTP transport does. Useful for fakes.
func NewResponse(status int, body []byte) *Response {
	return &Response{StatusCode: status, Header: http.Header{}, Body: body, Data: decodeBody(body)}
}

// JSONResponse marshals v into a 200 Response.
func JSONResponse(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("transport: marshal fake response: %v", err))
	}
	return NewResponse(http.StatusOK, body)
}

func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap maps the status to a sentinel so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode >= 500:
		return ErrNetwork
	}
	return nil
}

func checkStatus(method, url string, code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &StatusError{Method: method, URL: url, StatusCode: code, Body: body}
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return errors.Is(err, ErrNetwork)
}
