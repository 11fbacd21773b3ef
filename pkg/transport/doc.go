// Package transport is the HTTP collaborator used by every Waterwheel
// component.
//
// # Overview
//
// [Transport] exposes one method per verb (GET, POST, PATCH, DELETE). Each
// call takes an absolute URL, an optional JSON body, and optional per-call
// [Credentials], and returns a [Response] whose Data field holds the decoded
// JSON body. Components receive a Transport explicitly, so tests can
// substitute [Fake] or an httptest server without global interception.
//
// # HTTP Implementation
//
// [HTTP] is the production implementation. It handles:
//   - JSON encoding of request bodies and decoding of responses
//   - HTTP basic authentication from per-call credentials
//   - Default headers and an X-Request-Id per request
//   - Optional GET response caching via [cache.Cache]
//   - Optional exponential retry of network and 5xx failures
//
// Retries are off by default: callers of the registry and resolver observe
// every failure unchanged unless they opt in with [WithRetry].
//
// [cache.Cache]: github.com/matzehuels/waterwheel/pkg/cache.Cache
package transport
