package waterwheel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wwerrors "github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/hal"
	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

const testBase = "http://foo.dev"

var testCreds = &transport.Credentials{User: "b", Pass: "b"}

func testMethods() map[string]string {
	return map[string]string{
		http.MethodGet:    "/comment/{comment}",
		http.MethodPost:   "/entity/comment",
		http.MethodDelete: "/comment/{comment}",
		http.MethodPatch:  "/comment/{comment}",
	}
}

// catalogServer answers the catalog endpoint with testdata/entity.types.json.
func catalogServer(t *testing.T) *transport.Fake {
	t.Helper()
	body, err := os.ReadFile("testdata/entity.types.json")
	require.NoError(t, err)
	return &transport.Fake{Handler: func(context.Context, transport.Call) (*transport.Response, error) {
		return transport.NewResponse(http.StatusOK, body), nil
	}}
}

func newTest(t *testing.T, tr transport.Transport, opts ...Option) *Waterwheel {
	t.Helper()
	w, err := New(testBase, testCreds, nil, append([]Option{WithTransport(tr)}, opts...)...)
	require.NoError(t, err)
	return w
}

func TestNew(t *testing.T) {
	w := newTest(t, &transport.Fake{})
	assert.Equal(t, []string{"query"}, w.AvailableResources())
	assert.Equal(t, testBase, w.Base())
	assert.Equal(t, testCreds, w.Credentials())

	q, ok := w.Query()
	require.True(t, ok)
	assert.Equal(t, resource.KindQuery, q.Kind())
	assert.Equal(t, testBase, q.Base())
}

func TestNewMissingInformation(t *testing.T) {
	_, err := New("", nil, nil)
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeMissingBase))

	_, err = New("", nil, Catalog{})
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeMissingBase))

	_, err = New(testBase, nil, nil)
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeMissingCredentials))
}

func TestNewWithCatalog(t *testing.T) {
	w, err := New(testBase, nil, Catalog{
		"x": {EntityType: "x"},
		"y": {EntityType: "y", Bundle: "z"},
	}, WithTransport(&transport.Fake{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"query", "x", "y.z"}, w.AvailableResources())

	e, ok := w.Entity("y.z")
	require.True(t, ok)
	assert.Equal(t, "y", e.EntityType())
	assert.Equal(t, "z", e.Bundle())
	assert.Nil(t, e.Credentials())
}

func TestNewRejectsEntryWithoutEntityType(t *testing.T) {
	_, err := New(testBase, testCreds, Catalog{"broken": {Bundle: "b"}}, WithTransport(&transport.Fake{}))
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeInvalidCatalog))
}

func TestAddResources(t *testing.T) {
	w := newTest(t, &transport.Fake{})

	err := w.AddResources(map[string]resource.Descriptor{
		"comment": {
			Base:        testBase,
			Credentials: testCreds,
			Methods:     testMethods(),
			EntityType:  "comment",
			Bundle:      "comment",
			Options:     "/entity/types/comment/{bundle}",
		},
		"article": {
			Methods:    testMethods(),
			EntityType: "comment",
			Bundle:     "comment",
			Options:    "/entity/types/comment/{bundle}",
		},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, w.AddResources(nil), ErrNoResources)
	assert.True(t, wwerrors.Is(w.AddResources(map[string]resource.Descriptor{}), wwerrors.ErrCodeNoResources))
	assert.Equal(t, []string{"article", "comment", "query"}, w.AvailableResources())

	article, ok := w.Entity("article")
	require.True(t, ok)
	assert.Equal(t, "", article.Base())
}

func TestAvailableResourcesBundles(t *testing.T) {
	w := newTest(t, &transport.Fake{})
	require.NoError(t, w.AddResources(map[string]resource.Descriptor{
		"node.article": {Base: testBase, Credentials: testCreds, Methods: testMethods(), EntityType: "node", Bundle: "article"},
		"node.page":    {Base: testBase, Credentials: testCreds, Methods: testMethods(), EntityType: "node", Bundle: "page"},
	}))

	assert.Equal(t, []string{"node.article", "node.page", "query"}, w.AvailableResources())
}

func TestResourceLookup(t *testing.T) {
	w := newTest(t, &transport.Fake{})
	require.NoError(t, w.AddResources(map[string]resource.Descriptor{
		"comment": {EntityType: "comment", Methods: testMethods()},
	}))

	c, ok := w.Resource("comment")
	require.True(t, ok)
	assert.Equal(t, resource.KindEntity, c.Kind())

	_, ok = w.Resource("missing")
	assert.False(t, ok)

	_, ok = w.Entity("query")
	assert.False(t, ok, "query is not an entity client")
}

func TestQueryKeyCollision(t *testing.T) {
	w := newTest(t, &transport.Fake{})
	require.NoError(t, w.AddResources(map[string]resource.Descriptor{
		"query": {EntityType: "query"},
	}))

	c, ok := w.Resource("query")
	require.True(t, ok)
	assert.Equal(t, resource.KindEntity, c.Kind())

	_, ok = w.Query()
	assert.False(t, ok)
	assert.Equal(t, []string{"query"}, w.AvailableResources())
}

func TestFetchResources(t *testing.T) {
	tr := &transport.Fake{Handler: func(context.Context, transport.Call) (*transport.Response, error) {
		return transport.JSONResponse("resourceSuccess"), nil
	}}
	w := newTest(t, tr)

	res, err := w.FetchResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "resourceSuccess", res)

	calls := tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "http://foo.dev/entity/types?_format=json", calls[0].URL)
	assert.Equal(t, testCreds, calls[0].Credentials)
}

func TestFetchResourcesError(t *testing.T) {
	boom := errors.New("boom")
	w := newTest(t, &transport.Fake{Handler: func(context.Context, transport.Call) (*transport.Response, error) {
		return nil, boom
	}})

	_, err := w.FetchResources(context.Background())
	assert.Same(t, boom, err)

	_, err = w.PopulateResources(context.Background())
	assert.Same(t, boom, err)
}

func TestPopulateResources(t *testing.T) {
	w := newTest(t, catalogServer(t))

	res, err := w.PopulateResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"comment",
		"file",
		"menu",
		"node.article",
		"node.page",
		"node_type.content_type",
		"query",
		"taxonomy_term.tags",
		"taxonomy_vocabulary",
		"user",
	}, res)
	assert.Equal(t, res, w.AvailableResources())
}

func TestPopulatedClients(t *testing.T) {
	tr := catalogServer(t)
	w := newTest(t, tr)
	_, err := w.PopulateResources(context.Background())
	require.NoError(t, err)

	tags, ok := w.Entity("taxonomy_term.tags")
	require.True(t, ok)
	d := tags.Descriptor()
	assert.Equal(t, "/taxonomy/term/{taxonomy_term}", d.Methods[http.MethodGet])
	assert.Equal(t, "/entity/types/taxonomy_term/{bundle}", d.Options)
	assert.Equal(t, testBase, d.Base)
	assert.Equal(t, testCreds, d.Credentials)

	menu, ok := w.Entity("menu")
	require.True(t, ok)
	assert.Equal(t, resource.DefaultMethods("menu"), menu.Descriptor().Methods)
	assert.Equal(t, "menu", menu.Bundle())

	_, err = tags.Read(context.Background(), "4")
	require.NoError(t, err)
	calls := tr.Calls()
	assert.Equal(t, "http://foo.dev/taxonomy/term/4?_format=json", calls[len(calls)-1].URL)
}

func TestPopulateKeepsExistingResources(t *testing.T) {
	w := newTest(t, catalogServer(t))
	require.NoError(t, w.AddResources(map[string]resource.Descriptor{"custom": {EntityType: "custom"}}))

	res, err := w.PopulateResources(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res, "custom")
	assert.Contains(t, res, "node.article")
}

func TestPopulateAbortsOnInvalidEntry(t *testing.T) {
	tr := &transport.Fake{Handler: func(context.Context, transport.Call) (*transport.Response, error) {
		return transport.JSONResponse(map[string]any{
			"comment": map[string]any{"entityType": "comment"},
			"zzz":     map[string]any{"bundle": "orphan"},
		}), nil
	}}
	w := newTest(t, tr)

	_, err := w.PopulateResources(context.Background())
	require.Error(t, err)
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeInvalidCatalog))
	assert.Equal(t, []string{"query"}, w.AvailableResources())
}

func TestPopulateRejectsNonObjectCatalog(t *testing.T) {
	w := newTest(t, &transport.Fake{Handler: func(context.Context, transport.Call) (*transport.Response, error) {
		return transport.JSONResponse([]string{"comment"}), nil
	}})

	_, err := w.PopulateResources(context.Background())
	assert.True(t, wwerrors.Is(err, wwerrors.ErrCodeInvalidCatalog))
}

func TestPopulateHooks(t *testing.T) {
	hooks := &recordingHooks{}
	w := newTest(t, catalogServer(t), WithHooks(hooks))

	_, err := w.PopulateResources(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"populate:start", "populate:complete"}, hooks.events())
	assert.Equal(t, 10, hooks.resources)
}

func TestSetBaseAndCredentials(t *testing.T) {
	tr := catalogServer(t)
	w := newTest(t, tr)

	w.SetBase("http://foo2.dev")
	w.SetCredentials(&transport.Credentials{User: "c", Pass: "d"})
	assert.Equal(t, "http://foo2.dev", w.Base())
	assert.Equal(t, &transport.Credentials{User: "c", Pass: "d"}, w.Credentials())

	q, _ := w.Query()
	assert.Equal(t, "http://foo2.dev", q.Base())
	assert.Equal(t, &transport.Credentials{User: "c", Pass: "d"}, q.Credentials())

	_, err := w.PopulateResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://foo2.dev/entity/types?_format=json", tr.Calls()[0].URL)

	user, _ := w.Entity("user")
	assert.Equal(t, "http://foo2.dev", user.Base())
}

func TestFetchEmbedded(t *testing.T) {
	tr := &transport.Fake{Handler: func(_ context.Context, c transport.Call) (*transport.Response, error) {
		return transport.JSONResponse(map[string]any{"url": c.URL}), nil
	}}
	hooks := &recordingHooks{}
	w := newTest(t, tr, WithHooks(hooks))

	doc, err := hal.Parse([]byte(`{"_embedded": {"uid": [{"href": "/user/1"}], "tags": [{"href": "http://foo.dev/taxonomy/term/2"}]}}`))
	require.NoError(t, err)

	res, err := w.FetchEmbedded(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, map[string]any{"url": "http://foo.dev/user/1?_format=hal_json"}, res[1])
	assert.Equal(t, testCreds, tr.Calls()[0].Credentials)
	assert.Equal(t, []string{"resolve:start", "resolve:complete"}, hooks.events())

	_, err = w.FetchEmbedded(context.Background(), nil)
	assert.EqualError(t, err, "This is probably not HAL+JSON")
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	w := newTest(t, &transport.Fake{})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				keys := w.AvailableResources()
				// Each write adds "a<n>" and "b<n>" together.
				assert.Equal(t, 1, len(keys)%2, "torn write observed: %v", keys)
			}
		}()
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, w.AddResources(map[string]resource.Descriptor{
			fmt.Sprintf("a%03d", i): {EntityType: "a"},
			fmt.Sprintf("b%03d", i): {EntityType: "b"},
		}))
	}
	close(stop)
	wg.Wait()

	assert.Len(t, w.AvailableResources(), 201)
}

type recordingHooks struct {
	mu        sync.Mutex
	log       []string
	resources int
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, e)
}

func (h *recordingHooks) events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.log...)
}

func (h *recordingHooks) OnPopulateStart(context.Context, string) { h.record("populate:start") }

func (h *recordingHooks) OnPopulateComplete(_ context.Context, _ string, n int, _ time.Duration, _ error) {
	h.resources = n
	h.record("populate:complete")
}

func (h *recordingHooks) OnResolveStart(context.Context, int) { h.record("resolve:start") }

func (h *recordingHooks) OnResolveComplete(context.Context, int, time.Duration, error) {
	h.record("resolve:complete")
}
