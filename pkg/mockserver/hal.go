package mockserver

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
)

// member is one key of a JSON object written in a fixed order.
type member struct {
	key   string
	value any
}

// object marshals its members in slice order.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func halHref(base, entityType, id string) string {
	return base + "/" + entityType + "/" + id + "?_format=" + halFormat
}

func typeHref(base, entityType, bundle string) string {
	return base + "/rest/type/" + entityType + "/" + bundle
}

// RelationName is the HAL relation name of field on entityType/bundle.
func RelationName(base, entityType, bundle, field string) string {
	return base + "/rest/relation/" + entityType + "/" + bundle + "/" + field
}

// writeHAL renders e as HAL+JSON. Relations appear in the order their first
// link was added. Callers hold s.mu.
func (s *Server) writeHAL(w http.ResponseWriter, r *http.Request, entityType, id string, e *entity) {
	base := origin(r)

	var relations object
	index := map[string]int{}
	for _, l := range e.links {
		name := RelationName(base, entityType, e.bundle, l.Field)
		ref := map[string]any{
			"_links": map[string]any{
				"self": map[string]string{"href": halHref(base, l.EntityType, l.ID)},
			},
		}
		if target := s.entities[l.EntityType][l.ID]; target != nil {
			ref["_links"].(map[string]any)["type"] = map[string]string{"href": typeHref(base, l.EntityType, target.bundle)}
		}
		i, ok := index[name]
		if !ok {
			index[name] = len(relations)
			relations = append(relations, member{key: name, value: []any{ref}})
			continue
		}
		relations[i].value = append(relations[i].value.([]any), ref)
	}

	doc := object{
		{"_links", map[string]any{
			"self": map[string]string{"href": halHref(base, entityType, id)},
			"type": map[string]string{"href": typeHref(base, entityType, e.bundle)},
		}},
	}
	rec := record(entityType, id, e)
	for _, k := range slices.Sorted(maps.Keys(rec)) {
		doc = append(doc, member{k, rec[k]})
	}
	doc = append(doc, member{"_embedded", relations})

	w.Header().Set("Content-Type", "application/hal+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(doc)
}
