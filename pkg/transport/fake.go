package transport

import (
	"context"
	"net/http"
	"sync"
)

// Call records one request made through a Fake.
type Call struct {
	Method      string
	URL         string
	Body        any
	Credentials *Credentials
}

// Fake is an in-memory Transport for tests. Handler produces the response
// for each call; when nil, every call returns an empty 200 response.
type Fake struct {
	Handler func(ctx context.Context, c Call) (*Response, error)

	mu    sync.Mutex
	calls []Call
}

// Calls returns a copy of the recorded calls in arrival order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) Get(ctx context.Context, url string, creds *Credentials) (*Response, error) {
	return f.handle(ctx, Call{Method: http.MethodGet, URL: url, Credentials: creds})
}

func (f *Fake) Post(ctx context.Context, url string, body any, creds *Credentials) (*Response, error) {
	return f.handle(ctx, Call{Method: http.MethodPost, URL: url, Body: body, Credentials: creds})
}

func (f *Fake) Patch(ctx context.Context, url string, body any, creds *Credentials) (*Response, error) {
	return f.handle(ctx, Call{Method: http.MethodPatch, URL: url, Body: body, Credentials: creds})
}

func (f *Fake) Delete(ctx context.Context, url string, creds *Credentials) (*Response, error) {
	return f.handle(ctx, Call{Method: http.MethodDelete, URL: url, Credentials: creds})
}

func (f *Fake) handle(ctx context.Context, c Call) (*Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if f.Handler == nil {
		return NewResponse(http.StatusOK, nil), nil
	}
	return f.Handler(ctx, c)
}

var _ Transport = (*Fake)(nil)
