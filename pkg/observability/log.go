package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a charmbracelet logger at debug level,
// and failures at warn level. It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnPopulateStart(_ context.Context, base string) {
	h.logger.Debug("populating resources", "base", base)
}

func (h *LogHooks) OnPopulateComplete(_ context.Context, base string, resources int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("populate failed", "base", base, "err", err)
		return
	}
	h.logger.Debug("populated resources", "base", base, "count", resources, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnResolveStart(_ context.Context, refs int) {
	h.logger.Debug("resolving embedded", "refs", refs)
}

func (h *LogHooks) OnResolveComplete(_ context.Context, refs int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("resolve failed", "refs", refs, "err", err)
		return
	}
	h.logger.Debug("resolved embedded", "refs", refs, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h *LogHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ RegistryHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
