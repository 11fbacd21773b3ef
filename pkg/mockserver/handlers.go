package mockserver

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/waterwheel/pkg/resource"
)

const halFormat = "hal_json"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.types))
	for _, t := range s.types {
		name := t.EntityType
		if t.Bundle != t.EntityType {
			name += ":" + t.Bundle
		}
		out[name] = map[string]any{
			"entityType": t.EntityType,
			"bundle":     t.Bundle,
			"label":      t.Label,
			"methods":    resource.DefaultMethods(t.EntityType),
			"more":       resource.DefaultOptions(t.EntityType),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	t, ok := s.types[resource.Key(chi.URLParam(r, "entityType"), chi.URLParam(r, "bundle"))]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown entity type")
		return
	}

	fields := make(map[string]any, len(t.Fields))
	for name, typ := range t.Fields {
		fields[name] = map[string]any{"type": typ, "label": name}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entityType": t.EntityType,
		"bundle":     t.Bundle,
		"label":      t.Label,
		"fields":     fields,
	})
}

// handleQuery lists entities ordered by ID. range and offset page the
// result; sort orders by a field; other parameters filter on equality.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	q := r.URL.Query()

	s.mu.RLock()
	store, ok := s.entities[entityType]
	if !ok {
		s.mu.RUnlock()
		writeError(w, http.StatusNotFound, "unknown entity type")
		return
	}
	var out []map[string]any
	for _, id := range sortedIDs(store) {
		rec := record(entityType, id, store[id])
		if matches(rec, q) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	if field := q.Get("sort"); field != "" {
		slices.SortStableFunc(out, func(a, b map[string]any) int {
			return compareString(toString(a[field]), toString(b[field]))
		})
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if n, err := strconv.Atoi(q.Get("range")); err == nil && n >= 0 && n < len(out) {
		out = out[:n]
	}
	if out == nil {
		out = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, out)
}

var reservedParams = map[string]bool{"_format": true, "range": true, "offset": true, "sort": true}

func matches(rec map[string]any, q map[string][]string) bool {
	for k, v := range q {
		if reservedParams[k] || len(v) == 0 {
			continue
		}
		if toString(rec[k]) != v[0] {
			return false
		}
	}
	return true
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, _ := json.Marshal(v)
		return string(bytes.Trim(b, `"`))
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	bundle, _ := body["type"].(string)
	delete(body, "type")
	delete(body, "id")

	s.mu.Lock()
	if _, ok := s.entities[entityType]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "unknown entity type")
		return
	}
	id := s.put(entityType, bundle, "", body)
	rec := record(entityType, id, s.entities[entityType][id])
	s.mu.Unlock()

	w.Header().Set("Location", origin(r)+"/"+entityType+"/"+id)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	entityType, id := chi.URLParam(r, "entityType"), chi.URLParam(r, "id")

	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.entities[entityType][id]
	if e == nil {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	if r.URL.Query().Get("_format") == halFormat {
		s.writeHAL(w, r, entityType, id, e)
		return
	}
	writeJSON(w, http.StatusOK, record(entityType, id, e))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	entityType, id := chi.URLParam(r, "entityType"), chi.URLParam(r, "id")
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entities[entityType][id]
	if e == nil {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	delete(body, "type")
	delete(body, "id")
	maps.Copy(e.fields, body)
	writeJSON(w, http.StatusOK, record(entityType, id, e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	entityType, id := chi.URLParam(r, "entityType"), chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entities[entityType][id] == nil {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	delete(s.entities[entityType], id)
	w.WriteHeader(http.StatusNoContent)
}

// record is the plain JSON representation of an entity.
func record(entityType, id string, e *entity) map[string]any {
	rec := maps.Clone(e.fields)
	rec["id"] = id
	rec["entityType"] = entityType
	rec["type"] = e.bundle
	return rec
}
