package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/hal"
	"github.com/matzehuels/waterwheel/pkg/hal/graph"
	"github.com/matzehuels/waterwheel/pkg/resource"
)

// embeddedCommand creates the embedded command.
func (c *CLI) embeddedCommand() *cobra.Command {
	var (
		fields    []string
		dryRun    bool
		graphPath string
	)

	cmd := &cobra.Command{
		Use:   "embedded <resource> <id>",
		Short: "Resolve the embedded references of an entity",
		Long: `Fetch an entity as HAL+JSON and resolve its embedded references.

The output is a JSON array: the entity itself followed by one payload per
reference, in document order, or in --field order when fields are given.
A field matches a relation by full name or by its last path segment.`,
		Example: `  waterwheel embedded node.article 1
  waterwheel embedded node.article 1 --field field_tags --field uid
  waterwheel embedded node.article 1 --dry-run --graph refs.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateResourceKey(args[0]); err != nil {
				return err
			}
			if err := errors.ValidateIdentifier(args[1]); err != nil {
				return err
			}
			s, err := c.populated(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			e, ok := s.registry.Entity(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "unknown resource %q", args[0])
			}
			doc, err := fetchHAL(ctx, s, e, args[1])
			if err != nil {
				return err
			}

			if graphPath != "" {
				if err := writeGraph(ctx, doc, fields, graphPath); err != nil {
					return err
				}
				printFile(graphPath)
			}

			if dryRun {
				steps, err := hal.Walk(doc, fields...)
				if err != nil {
					return err
				}
				for _, st := range steps {
					fmt.Fprintf(cmd.OutOrStdout(), "%s[%d]\t%s\n", st.Relation, st.Index, st.Href)
				}
				return nil
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d references...", doc.Refs()))
			spinner.Start()
			p := newProgress(loggerFromContext(ctx))
			res, err := s.registry.FetchEmbedded(ctx, doc, fields...)
			spinner.Stop()
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Resolved %d references", len(res)-1))
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "only resolve this relation (repeatable, order kept)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the references without fetching them")
	cmd.Flags().StringVar(&graphPath, "graph", "", "write a reference graph (.svg or .dot)")
	return cmd
}

// fetchHAL reads entity id of e as HAL+JSON.
func fetchHAL(ctx context.Context, s *session, e *resource.Entity, id string) (*hal.Document, error) {
	d := e.Descriptor()
	d.Format = hal.Format
	he, err := resource.FromDescriptor(s.tr, d)
	if err != nil {
		return nil, err
	}
	resp, err := he.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return hal.Parse(resp.Body)
}

// writeGraph renders the reference graph of doc to path. The extension
// selects the format.
func writeGraph(ctx context.Context, doc *hal.Document, fields []string, path string) error {
	dot, err := graph.ToDOT(doc, graph.Options{Fields: fields})
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		out = []byte(dot)
	case ".svg":
		if out, err = graph.RenderSVG(ctx, dot); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unsupported graph format %q (use .svg or .dot)", filepath.Ext(path))
	}
	return os.WriteFile(path, out, 0o644)
}
