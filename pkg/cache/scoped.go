package cache

// ScopedKeyer wraps a Keyer with a prefix for per-user isolation.
// Responses fetched with one set of credentials must not be served to
// another, so the transport scopes keys by the requesting user.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:admin:")
//
//	// Anonymous requests share the global key space
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(method, url string) string {
	return k.prefix + k.inner.HTTPKey(method, url)
}
