package resource

import (
	"context"
	"net/http"
	"net/url"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// Entity is the client for one entity type/bundle pair.
type Entity struct {
	endpoint
	tr         transport.Transport
	methods    map[string]string
	entityType string
	bundle     string
	options    string
	format     string
}

// New builds an Entity after validating that d carries a base URL and
// credentials. Use it for standalone clients; registries use
// [FromDescriptor].
func New(tr transport.Transport, d Descriptor) (*Entity, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return FromDescriptor(tr, d)
}

// FromDescriptor builds an Entity without checking base or credentials, so
// a registry can hold partially configured resources. Only a nil transport
// is rejected.
func FromDescriptor(tr transport.Transport, d Descriptor) (*Entity, error) {
	if tr == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "transport is required")
	}
	d = d.clone()
	if d.Format == "" {
		d.Format = DefaultFormat
	}
	return &Entity{
		endpoint:   endpoint{base: d.Base, creds: d.Credentials},
		tr:         tr,
		methods:    d.Methods,
		entityType: d.EntityType,
		bundle:     d.Bundle,
		options:    d.Options,
		format:     d.Format,
	}, nil
}

// Kind returns KindEntity.
func (e *Entity) Kind() Kind { return KindEntity }

// EntityType returns the entity type this client is bound to.
func (e *Entity) EntityType() string { return e.entityType }

// Bundle returns the bundle, which may be empty.
func (e *Entity) Bundle() string { return e.bundle }

// Descriptor returns a snapshot of the client's current configuration.
func (e *Entity) Descriptor() Descriptor {
	base, creds := e.snapshot()
	return Descriptor{
		Base:        base,
		Credentials: creds,
		Methods:     e.methods,
		EntityType:  e.entityType,
		Bundle:      e.bundle,
		Options:     e.options,
		Format:      e.format,
	}.clone()
}

// Create POSTs body to the collection URL.
func (e *Entity) Create(ctx context.Context, body any) (*transport.Response, error) {
	url, creds, err := e.url(http.MethodPost, "", false)
	if err != nil {
		return nil, err
	}
	return e.tr.Post(ctx, url, body, creds)
}

// Read GETs the record identified by id.
func (e *Entity) Read(ctx context.Context, id string) (*transport.Response, error) {
	url, creds, err := e.url(http.MethodGet, id, true)
	if err != nil {
		return nil, err
	}
	return e.tr.Get(ctx, url, creds)
}

// Update PATCHes the record identified by id with body.
func (e *Entity) Update(ctx context.Context, id string, body any) (*transport.Response, error) {
	url, creds, err := e.url(http.MethodPatch, id, true)
	if err != nil {
		return nil, err
	}
	return e.tr.Patch(ctx, url, body, creds)
}

// Delete removes the record identified by id.
func (e *Entity) Delete(ctx context.Context, id string) (*transport.Response, error) {
	url, creds, err := e.url(http.MethodDelete, id, true)
	if err != nil {
		return nil, err
	}
	return e.tr.Delete(ctx, url, creds)
}

// Options fetches the field metadata of this resource. The {bundle}
// placeholder is filled with the bundle, or the entity type when the bundle
// is empty.
func (e *Entity) Options(ctx context.Context) (*transport.Response, error) {
	if e.options == "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s: no options endpoint", Key(e.entityType, e.bundle))
	}
	bundle := e.bundle
	if bundle == "" {
		bundle = e.entityType
	}
	base, creds := e.snapshot()
	return e.tr.Get(ctx, join(base, expand(e.options, bundle), e.format), creds)
}

// url resolves the template for method. Item URLs substitute the
// path-escaped id; the collection URL used by create is taken as is.
func (e *Entity) url(method, id string, item bool) (string, *transport.Credentials, error) {
	tmpl, ok := e.methods[method]
	if !ok || tmpl == "" {
		return "", nil, errors.New(errors.ErrCodeUnsupported, "%s: %s is not supported", Key(e.entityType, e.bundle), method)
	}
	if item {
		if id == "" {
			return "", nil, errors.New(errors.ErrCodeInvalidInput, "%s: %s needs an id", Key(e.entityType, e.bundle), method)
		}
		tmpl = expand(tmpl, url.PathEscape(id))
	}
	base, creds := e.snapshot()
	return join(base, tmpl, e.format), creds, nil
}

var _ Client = (*Entity)(nil)
