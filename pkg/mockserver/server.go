package mockserver

import (
	"io"
	"maps"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// Type declares an entity type and bundle served by the mock.
type Type struct {
	EntityType string
	Bundle     string
	Label      string
	Fields     map[string]string // field name -> field type
}

func (t Type) key() string { return resource.Key(t.EntityType, t.Bundle) }

// Link is an entity reference rendered under "_embedded".
type Link struct {
	Field      string
	EntityType string
	ID         string
}

type entity struct {
	bundle string
	fields map[string]any
	links  []Link
}

// Server is an in-memory Drupal-like API. It is safe for concurrent use.
type Server struct {
	mu       sync.RWMutex
	types    map[string]Type
	entities map[string]map[string]*entity // entityType -> id -> entity
	nextID   map[string]int

	creds  *transport.Credentials
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials requires HTTP basic auth with creds on every request.
func WithCredentials(creds *transport.Credentials) Option {
	return func(s *Server) { s.creds = creds.Clone() }
}

// WithLogger logs every request at debug level.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns an empty server. Use [Server.Seed] for demo content.
func New(opts ...Option) *Server {
	s := &Server{
		types:    make(map[string]Type),
		entities: make(map[string]map[string]*entity),
		nextID:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.creds != nil {
		r.Use(middleware.BasicAuth("waterwheel", map[string]string{s.creds.User: s.creds.Pass}))
	}

	r.Get("/entity/types", s.handleCatalog)
	r.Get("/entity/types/{entityType}/{bundle}", s.handleOptions)
	r.Get("/entity/query/{entityType}", s.handleQuery)
	r.Post("/entity/{entityType}", s.handleCreate)
	r.Get("/{entityType}/{id}", s.handleRead)
	r.Patch("/{entityType}/{id}", s.handleUpdate)
	r.Delete("/{entityType}/{id}", s.handleDelete)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// AddType registers an entity type/bundle in the catalog.
func (s *Server) AddType(t Type) {
	if t.Bundle == "" {
		t.Bundle = t.EntityType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[t.key()] = t
	if s.entities[t.EntityType] == nil {
		s.entities[t.EntityType] = make(map[string]*entity)
	}
}

// Put stores an entity and returns its ID. An empty id allocates the next
// numeric ID for the entity type.
func (s *Server) Put(entityType, bundle, id string, fields map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(entityType, bundle, id, fields)
}

func (s *Server) put(entityType, bundle, id string, fields map[string]any) string {
	if bundle == "" {
		bundle = entityType
	}
	if s.entities[entityType] == nil {
		s.entities[entityType] = make(map[string]*entity)
	}
	if id == "" {
		s.nextID[entityType]++
		id = strconv.Itoa(s.nextID[entityType])
		for s.entities[entityType][id] != nil {
			s.nextID[entityType]++
			id = strconv.Itoa(s.nextID[entityType])
		}
	}
	cp := maps.Clone(fields)
	if cp == nil {
		cp = map[string]any{}
	}
	s.entities[entityType][id] = &entity{bundle: bundle, fields: cp}
	return id
}

// Link adds an entity reference from one entity to another. It reports
// false when the source entity does not exist.
func (s *Server) Link(entityType, id string, l Link) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entities[entityType][id]
	if e == nil {
		return false
	}
	e.links = append(e.links, l)
	return true
}

// Count returns the number of stored entities of entityType.
func (s *Server) Count(entityType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities[entityType])
}

// sortedIDs orders numeric IDs numerically, then the rest lexically.
func sortedIDs(m map[string]*entity) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
