// Package cache provides pluggable storage for HTTP response bodies.
//
// The transport layer caches GET responses through the [Cache] interface so
// that repeated catalog fetches and embedded dereferences can be served
// locally. Backends:
//   - [FileCache]: one file per entry, for CLI usage
//   - [RedisCache]: shared cache for multi-process deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer]. Use [NewScopedKeyer] to isolate entries per
// authenticated user, since responses depend on the credentials that fetched
// them.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached data and whether it was a hit.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey generates a key for an HTTP response identified by method and URL.
	HTTPKey(method, url string) string
}

// DefaultKeyer hashes request identity into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<sha256(method,url)>".
func (DefaultKeyer) HTTPKey(method, url string) string {
	return hashKey("http", method, url)
}
