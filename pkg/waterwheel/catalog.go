package waterwheel

import (
	"maps"
	"slices"

	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// CatalogPath is the endpoint listing the resource types of a server.
const CatalogPath = "/entity/types"

// CatalogEntry describes one resource type as returned by [CatalogPath].
// Only EntityType is required.
type CatalogEntry struct {
	EntityType string            `json:"entityType" mapstructure:"entityType"`
	Bundle     string            `json:"bundle,omitempty" mapstructure:"bundle"`
	Methods    map[string]string `json:"methods,omitempty" mapstructure:"methods"`
	Options    string            `json:"options,omitempty" mapstructure:"options"`
	More       string            `json:"more,omitempty" mapstructure:"more"`
}

// Catalog maps catalog names to entries. The names are informational; the
// registry key of an entry is computed from its entity type and bundle.
type Catalog map[string]CatalogEntry

// DecodeCatalog converts a decoded JSON catalog into a Catalog. Unknown
// fields are ignored and null fields are left empty.
func DecodeCatalog(raw any) (Catalog, error) {
	if _, ok := raw.(map[string]any); !ok {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog must be an object, got %T", raw)
	}
	var c Catalog
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create catalog decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	return c, nil
}

// descriptor builds the descriptor for e. Entry methods and options
// override the defaults derived from the entity type.
func (e CatalogEntry) descriptor(base string, creds *transport.Credentials) resource.Descriptor {
	bundle := e.Bundle
	if bundle == "" {
		bundle = e.EntityType
	}
	methods := e.Methods
	if len(methods) == 0 {
		methods = resource.DefaultMethods(e.EntityType)
	}
	options := e.Options
	if options == "" {
		options = e.More
	}
	if options == "" {
		options = resource.DefaultOptions(e.EntityType)
	}
	return resource.Descriptor{
		Base:        base,
		Credentials: creds,
		Methods:     methods,
		EntityType:  e.EntityType,
		Bundle:      bundle,
		Options:     options,
	}
}

// build creates one client per entry, keyed by entity type and bundle. It
// fails without side effects on the first entry, by name, lacking an entity
// type. When two entries share a key the one with the greater name wins.
func build(tr transport.Transport, base string, creds *transport.Credentials, c Catalog) (map[string]resource.Client, error) {
	clients := make(map[string]resource.Client, len(c))
	for _, name := range slices.Sorted(maps.Keys(c)) {
		entry := c[name]
		if entry.EntityType == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog entry %q has no entityType", name)
		}
		d := entry.descriptor(base, creds)
		e, err := resource.FromDescriptor(tr, d)
		if err != nil {
			return nil, err
		}
		clients[d.Key()] = e
	}
	return clients, nil
}
