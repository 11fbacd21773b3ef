package hal

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/observability"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// DefaultConcurrency bounds the number of in-flight fetches per call.
const DefaultConcurrency = 8

// Format is the _format value added to reference URLs.
const Format = "hal_json"

// Step is one planned dereference.
type Step struct {
	Relation string // relation name as declared in the document
	Index    int    // position within the relation
	Href     string // URL that will be fetched, _format included
}

// Resolver dereferences embedded references. It holds no per-call state and
// is safe for concurrent use.
type Resolver struct {
	tr          transport.Transport
	creds       *transport.Credentials
	base        string
	concurrency int
	hooks       observability.RegistryHooks
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds in-flight fetches. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithBase resolves relative hrefs against base.
func WithBase(base string) Option {
	return func(r *Resolver) { r.base = base }
}

// WithHooks overrides the global registry hooks.
func WithHooks(h observability.RegistryHooks) Option {
	return func(r *Resolver) { r.hooks = h }
}

// NewResolver returns a Resolver that fetches through tr with creds.
func NewResolver(tr transport.Transport, creds *transport.Credentials, opts ...Option) *Resolver {
	r := &Resolver{tr: tr, creds: creds.Clone(), concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Walk returns the ordered dereference plan for doc without fetching.
//
// With no fields, every relation is visited in declaration order. Otherwise
// relations are visited in the order of fields; a field selects a relation
// whose name, or last path segment of the name, equals it. Unknown fields
// select nothing.
func Walk(doc *Document, fields ...string) ([]Step, error) {
	return walk(doc, "", fields)
}

func walk(doc *Document, base string, fields []string) ([]Step, error) {
	if doc == nil || !doc.HasEmbedded {
		return nil, ErrNotHAL
	}

	var rels []Relation
	if len(fields) == 0 {
		rels = doc.Embedded
	} else {
		// A relation is selected once, by the first field that matches it.
		picked := make([]bool, len(doc.Embedded))
		for _, f := range fields {
			for i, rel := range doc.Embedded {
				if !picked[i] && rel.matches(f) {
					picked[i] = true
					rels = append(rels, rel)
				}
			}
		}
	}

	var steps []Step
	for _, rel := range rels {
		for i, ref := range rel.Refs {
			if ref.Href == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s[%d]: reference has no href", rel.Name, i)
			}
			steps = append(steps, Step{Relation: rel.Name, Index: i, Href: withFormat(resolveHref(base, ref.Href))})
		}
	}
	return steps, nil
}

// FetchEmbedded resolves the references of doc selected by fields. The
// result starts with doc.Payload followed by one payload per reference in
// [Walk] order.
func (r *Resolver) FetchEmbedded(ctx context.Context, doc *Document, fields ...string) ([]any, error) {
	steps, err := walk(doc, r.base, fields)
	if err != nil {
		return nil, err
	}

	hooks := r.hooksFor()
	hooks.OnResolveStart(ctx, len(steps))
	start := time.Now()

	out := make([]any, len(steps)+1)
	out[0] = doc.Payload

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, s := range steps {
		g.Go(func() error {
			resp, err := r.tr.Get(gctx, s.Href, r.creds)
			if err != nil {
				return err
			}
			out[i+1] = resp.Data
			return nil
		})
	}
	err = g.Wait()

	hooks.OnResolveComplete(ctx, len(steps), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) hooksFor() observability.RegistryHooks {
	if r.hooks != nil {
		return r.hooks
	}
	return observability.Registry()
}

func resolveHref(base, href string) string {
	if base == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}

// withFormat appends _format=hal_json unless href already names a format.
func withFormat(href string) string {
	if u, err := url.Parse(href); err == nil && u.Query().Has("_format") {
		return href
	}
	frag := ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href, frag = href[:i], href[i:]
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + "_format=" + Format + frag
}
