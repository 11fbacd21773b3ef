package resource

import (
	"context"
	"net/url"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// QueryPath is the endpoint template of the query client. The placeholder is
// replaced by the entity type given to [Query.Query].
const QueryPath = "/entity/query/{entityType}"

// Query is the always-present cross-entity query client. Unlike [Entity], it
// is not bound to an entity type.
type Query struct {
	endpoint
	tr transport.Transport
}

// NewQuery builds the query client.
func NewQuery(tr transport.Transport, base string, creds *transport.Credentials) (*Query, error) {
	if tr == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "transport is required")
	}
	return &Query{endpoint: endpoint{base: base, creds: creds.Clone()}, tr: tr}, nil
}

// Kind returns KindQuery.
func (q *Query) Kind() Kind { return KindQuery }

// Query lists entities of entityType. params (pagination, filters, sort) are
// appended to the query string as given; they are not validated.
func (q *Query) Query(ctx context.Context, entityType string, params url.Values) (*transport.Response, error) {
	if entityType == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "entity type is required")
	}
	base, creds := q.snapshot()
	u := join(base, expand(QueryPath, url.PathEscape(entityType)), "")

	values := url.Values{}
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}
	if values.Get("_format") == "" {
		values.Set("_format", DefaultFormat)
	}
	return q.tr.Get(ctx, u+"?"+values.Encode(), creds)
}

var _ Client = (*Query)(nil)
