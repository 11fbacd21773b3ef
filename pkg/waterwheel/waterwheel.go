package waterwheel

import (
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/hal"
	"github.com/matzehuels/waterwheel/pkg/observability"
	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// QueryKey is the reserved registry key of the query client.
const QueryKey = "query"

// ErrNoResources is returned by AddResources when given nothing to add.
var ErrNoResources = errors.New(errors.ErrCodeNoResources, "no resources to add")

// Waterwheel is the resource registry.
type Waterwheel struct {
	tr          transport.Transport
	logger      *log.Logger
	hooks       observability.RegistryHooks
	concurrency int

	mu      sync.Mutex // serializes writers of clients
	clients atomic.Pointer[map[string]resource.Client]

	cfgMu sync.RWMutex
	base  string
	creds *transport.Credentials
}

// Option configures a Waterwheel.
type Option func(*Waterwheel)

// WithTransport sets the transport shared by every client. The default is
// transport.NewHTTP().
func WithTransport(tr transport.Transport) Option {
	return func(w *Waterwheel) { w.tr = tr }
}

// WithLogger attaches a logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(w *Waterwheel) { w.logger = l }
}

// WithHooks overrides the global registry hooks.
func WithHooks(h observability.RegistryHooks) Option {
	return func(w *Waterwheel) { w.hooks = h }
}

// WithConcurrency bounds the in-flight fetches of FetchEmbedded.
func WithConcurrency(n int) Option {
	return func(w *Waterwheel) { w.concurrency = n }
}

// New creates a registry for base. Credentials may only be nil when a
// catalog is given. One client is built per catalog entry; the query
// client is always present.
func New(base string, creds *transport.Credentials, catalog Catalog, opts ...Option) (*Waterwheel, error) {
	if base == "" {
		return nil, errors.New(errors.ErrCodeMissingBase, "base URL is required")
	}
	if creds == nil && catalog == nil {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "credentials are required")
	}

	w := &Waterwheel{
		base:        base,
		creds:       creds.Clone(),
		concurrency: hal.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.tr == nil {
		w.tr = transport.NewHTTP()
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}

	q, err := resource.NewQuery(w.tr, w.base, w.creds)
	if err != nil {
		return nil, err
	}
	clients, err := build(w.tr, w.base, w.creds, catalog)
	if err != nil {
		return nil, err
	}
	clients[QueryKey] = q
	w.clients.Store(&clients)

	w.logger.Debug("registry created", "base", base, "resources", len(clients))
	return w, nil
}

// Base returns the default base URL.
func (w *Waterwheel) Base() string {
	w.cfgMu.RLock()
	defer w.cfgMu.RUnlock()
	return w.base
}

// Credentials returns a copy of the default credentials.
func (w *Waterwheel) Credentials() *transport.Credentials {
	w.cfgMu.RLock()
	defer w.cfgMu.RUnlock()
	return w.creds.Clone()
}

// SetBase changes the default base URL used by later population, catalog
// fetches, embedded resolution and the query client. Registered entity
// clients keep their own base.
func (w *Waterwheel) SetBase(base string) {
	w.cfgMu.Lock()
	w.base = base
	w.cfgMu.Unlock()
	if q, ok := w.Query(); ok {
		q.SetBase(base)
	}
}

// SetCredentials changes the default credentials, like [Waterwheel.SetBase].
func (w *Waterwheel) SetCredentials(creds *transport.Credentials) {
	w.cfgMu.Lock()
	w.creds = creds.Clone()
	w.cfgMu.Unlock()
	if q, ok := w.Query(); ok {
		q.SetCredentials(creds)
	}
}

func (w *Waterwheel) defaults() (string, *transport.Credentials) {
	w.cfgMu.RLock()
	defer w.cfgMu.RUnlock()
	return w.base, w.creds.Clone()
}

// AvailableResources returns the sorted registry keys, "query" included.
func (w *Waterwheel) AvailableResources() []string {
	return slices.Sorted(maps.Keys(*w.clients.Load()))
}

// Resource returns the client registered under key.
func (w *Waterwheel) Resource(key string) (resource.Client, bool) {
	c, ok := (*w.clients.Load())[key]
	return c, ok
}

// Entity returns the entity client registered under key.
func (w *Waterwheel) Entity(key string) (*resource.Entity, bool) {
	c, _ := w.Resource(key)
	e, ok := c.(*resource.Entity)
	return e, ok
}

// Query returns the query client. It reports false only when the "query"
// key was overwritten by an entity resource.
func (w *Waterwheel) Query() (*resource.Query, bool) {
	c, _ := w.Resource(QueryKey)
	q, ok := c.(*resource.Query)
	return q, ok
}

// AddResources registers one client per descriptor under its map key as
// given. Descriptors without base or credentials are accepted. An empty
// map returns ErrNoResources and changes nothing.
func (w *Waterwheel) AddResources(resources map[string]resource.Descriptor) error {
	if len(resources) == 0 {
		return ErrNoResources
	}
	added := make(map[string]resource.Client, len(resources))
	for key, d := range resources {
		e, err := resource.FromDescriptor(w.tr, d)
		if err != nil {
			return err
		}
		added[key] = e
	}
	w.merge(added)
	w.logger.Debug("resources added", "count", len(added))
	return nil
}

// merge publishes a copy of the current map with added applied.
func (w *Waterwheel) merge(added map[string]resource.Client) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := maps.Clone(*w.clients.Load())
	maps.Copy(next, added)
	w.clients.Store(&next)
}

// FetchResources GETs the server catalog and returns the decoded body
// unchanged.
func (w *Waterwheel) FetchResources(ctx context.Context) (any, error) {
	base, creds := w.defaults()
	resp, err := w.tr.Get(ctx, strings.TrimSuffix(base, "/")+CatalogPath+"?_format="+resource.DefaultFormat, creds)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// PopulateResources fetches the server catalog and registers one client
// per entry, keyed by entity type and bundle. All clients are built before
// any is registered: an invalid entry leaves the registry unchanged. It
// returns the registry keys after population.
func (w *Waterwheel) PopulateResources(ctx context.Context) (keys []string, err error) {
	base, creds := w.defaults()
	hooks := w.hooksFor()
	hooks.OnPopulateStart(ctx, base)
	start := time.Now()
	defer func() {
		hooks.OnPopulateComplete(ctx, base, len(keys), time.Since(start), err)
	}()

	raw, err := w.FetchResources(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := DecodeCatalog(raw)
	if err != nil {
		return nil, err
	}
	clients, err := build(w.tr, base, creds, catalog)
	if err != nil {
		return nil, err
	}
	w.merge(clients)

	w.logger.Debug("resources populated", "base", base, "count", len(clients))
	return w.AvailableResources(), nil
}

// FetchEmbedded resolves the embedded references of doc with the registry
// transport and default credentials. See [hal.Resolver.FetchEmbedded].
func (w *Waterwheel) FetchEmbedded(ctx context.Context, doc *hal.Document, fields ...string) ([]any, error) {
	base, creds := w.defaults()
	r := hal.NewResolver(w.tr, creds,
		hal.WithBase(base),
		hal.WithConcurrency(w.concurrency),
		hal.WithHooks(w.hooksFor()),
	)
	return r.FetchEmbedded(ctx, doc, fields...)
}

func (w *Waterwheel) hooksFor() observability.RegistryHooks {
	if w.hooks != nil {
		return w.hooks
	}
	return observability.Registry()
}
