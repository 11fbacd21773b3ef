// Package graph draws the embedded references of a HAL document as a
// Graphviz diagram: the document at the top, one node per relation, one
// node per referenced URL.
//
// [ToDOT] produces DOT source; [RenderSVG] renders it in-process with
// [github.com/goccy/go-graphviz].
package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/waterwheel/pkg/hal"
)

const selfID = "self"

// Options configures DOT output.
type Options struct {
	// Fields restricts the diagram to the selected relations, as in
	// [hal.Walk].
	Fields []string
	// FullNames labels relations with their full name instead of the last
	// path segment.
	FullNames bool
}

// ToDOT converts the reference plan of doc to Graphviz DOT.
func ToDOT(doc *hal.Document, opts Options) (string, error) {
	steps, err := hal.Walk(doc, opts.Fields...)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	self := doc.SelfHref()
	if self == "" {
		self = selfID
	}
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightblue];\n", selfID, self)

	seen := map[string]bool{}
	for _, s := range steps {
		relID := "rel:" + s.Relation
		if !seen[relID] {
			seen[relID] = true
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", relID, relLabel(s.Relation, opts.FullNames))
			fmt.Fprintf(&buf, "  %q -> %q;\n", selfID, relID)
		}
		refID := fmt.Sprintf("ref:%s#%d", s.Relation, s.Index)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", refID, s.Href)
		fmt.Fprintf(&buf, "  %q -> %q;\n", relID, refID)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func relLabel(name string, full bool) string {
	if full {
		return name
	}
	return name[strings.LastIndex(name, "/")+1:]
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
