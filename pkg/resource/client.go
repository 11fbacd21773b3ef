package resource

import (
	"sync"

	"github.com/matzehuels/waterwheel/pkg/transport"
)

// Kind discriminates the Client variants.
type Kind int

const (
	// KindEntity is a client bound to one entity type and bundle.
	KindEntity Kind = iota
	// KindQuery is the cross-entity query client.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindQuery:
		return "query"
	}
	return "unknown"
}

// Client is the behavior shared by every registered resource client.
type Client interface {
	Kind() Kind
	Base() string
	SetBase(base string)
	Credentials() *transport.Credentials
	SetCredentials(creds *transport.Credentials)
}

// endpoint holds the mutable base URL and credentials of a client.
type endpoint struct {
	mu    sync.RWMutex
	base  string
	creds *transport.Credentials
}

// Base returns the current base URL.
func (e *endpoint) Base() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base
}

// SetBase replaces the base URL. No validation is performed; a malformed URL
// surfaces as a transport error at request time.
func (e *endpoint) SetBase(base string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.base = base
}

// Credentials returns a copy of the current credentials, or nil.
func (e *endpoint) Credentials() *transport.Credentials {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.creds.Clone()
}

// SetCredentials replaces the credentials wholesale.
func (e *endpoint) SetCredentials(creds *transport.Credentials) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creds = creds.Clone()
}

func (e *endpoint) snapshot() (string, *transport.Credentials) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base, e.creds.Clone()
}
