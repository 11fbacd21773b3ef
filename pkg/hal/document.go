package hal

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/waterwheel/pkg/errors"
)

// ErrNotHAL is returned when a document is missing or has no "_embedded"
// member. Its message is fixed so callers can match on it.
var ErrNotHAL error = notHALError{}

type notHALError struct{}

func (notHALError) Error() string     { return "This is probably not HAL+JSON" }
func (notHALError) Code() errors.Code { return errors.ErrCodeNotHAL }

// Document is a parsed HAL+JSON document.
type Document struct {
	Payload     any        // the whole decoded document
	Embedded    []Relation // "_embedded" relations in declaration order
	HasEmbedded bool       // false when "_embedded" is absent, null or not an object
}

// Relation is one "_embedded" member.
type Relation struct {
	Name string
	Refs []Reference
}

// Field returns the last path segment of the relation name. Drupal names
// relations by URL, e.g. ".../rest/relation/node/article/field_tags".
func (r Relation) Field() string {
	return r.Name[strings.LastIndex(r.Name, "/")+1:]
}

// matches reports whether field selects this relation.
func (r Relation) matches(field string) bool {
	return r.Name == field || r.Field() == field
}

// Reference is a single embedded entry.
type Reference struct {
	Href string // _links.self.href, or a top-level href
	Raw  any
}

// Refs returns the total number of references across all relations.
func (d *Document) Refs() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, rel := range d.Embedded {
		n += len(rel.Refs)
	}
	return n
}

// SelfHref returns the document's own _links.self.href, if any.
func (d *Document) SelfHref() string {
	if d == nil {
		return ""
	}
	return hrefOf(d.Payload)
}

// Parse decodes a HAL+JSON document. Only malformed JSON is an error; a
// valid JSON value without "_embedded" yields a Document whose HasEmbedded
// is false.
func Parse(data []byte) (*Document, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse HAL document")
	}
	doc := &Document{Payload: payload}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return doc, nil
	}
	raw, ok := top["_embedded"]
	if !ok {
		return doc, nil
	}
	rels, ok, err := parseEmbedded(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse _embedded")
	}
	doc.Embedded, doc.HasEmbedded = rels, ok
	return doc, nil
}

// parseEmbedded walks the tokens of the "_embedded" object so relation
// order survives decoding.
func parseEmbedded(raw json.RawMessage) ([]Relation, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false, nil
	}

	rels := []Relation{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false, err
		}
		name, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, false, err
		}
		rel := Relation{Name: name, Refs: references(v)}

		// Duplicate keys: the last value wins, at the first position.
		if i := slices.IndexFunc(rels, func(r Relation) bool { return r.Name == name }); i >= 0 {
			rels[i] = rel
			continue
		}
		rels = append(rels, rel)
	}
	return rels, true, nil
}

// FromMap builds a Document from decoded JSON. Map iteration order is
// random, so relations are sorted by name.
func FromMap(m map[string]any) *Document {
	if m == nil {
		return &Document{}
	}
	doc := &Document{Payload: m}
	embedded, ok := m["_embedded"].(map[string]any)
	if !ok {
		return doc
	}
	doc.HasEmbedded = true
	doc.Embedded = []Relation{}
	for _, name := range slices.Sorted(maps.Keys(embedded)) {
		doc.Embedded = append(doc.Embedded, Relation{Name: name, Refs: references(embedded[name])})
	}
	return doc
}

// references turns a relation value into its references. A single object
// is a one-element relation; null has none.
func references(v any) []Reference {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		refs := make([]Reference, len(v))
		for i, item := range v {
			refs[i] = Reference{Href: hrefOf(item), Raw: item}
		}
		return refs
	default:
		return []Reference{{Href: hrefOf(v), Raw: v}}
	}
}

func hrefOf(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if links, ok := m["_links"].(map[string]any); ok {
		if self, ok := links["self"].(map[string]any); ok {
			if href, ok := self["href"].(string); ok && href != "" {
				return href
			}
		}
	}
	href, _ := m["href"].(string)
	return href
}
