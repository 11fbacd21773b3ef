package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRegistryHooks{}
	r.OnPopulateStart(ctx, "http://foo.dev")
	r.OnPopulateComplete(ctx, "http://foo.dev", 10, time.Second, nil)
	r.OnResolveStart(ctx, 3)
	r.OnResolveComplete(ctx, 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "http:abc")
	c.OnCacheMiss(ctx, "http:abc")
	c.OnCacheSet(ctx, "http:abc", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "foo.dev", "/entity/types")
	h.OnResponse(ctx, "GET", "foo.dev", "/entity/types", 200, time.Second)
	h.OnError(ctx, "GET", "foo.dev", "/entity/types", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("Registry() should return NoopRegistryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customRegistry := &testRegistryHooks{}
	SetRegistryHooks(customRegistry)
	if Registry() != customRegistry {
		t.Error("SetRegistryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("Reset() should restore NoopRegistryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testRegistryHooks{}
	SetRegistryHooks(custom)
	SetRegistryHooks(nil)

	if Registry() != custom {
		t.Error("SetRegistryHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnRequest(ctx, "GET", "foo.dev", "/entity/types")
	h.OnPopulateComplete(ctx, "http://foo.dev", 0, 0, errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "/entity/types") {
		t.Errorf("log output missing request path: %q", out)
	}
	if !strings.Contains(out, "populate failed") || !strings.Contains(out, "boom") {
		t.Errorf("log output missing populate failure: %q", out)
	}
}

type testRegistryHooks struct{ NoopRegistryHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
