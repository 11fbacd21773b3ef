package cli

import (
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/waterwheel"
)

// resourcesCommand creates the resources command group.
func (c *CLI) resourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"res"},
		Short:   "Discover the resource types of the server",
	}

	cmd.AddCommand(c.resourcesListCommand())
	cmd.AddCommand(c.resourcesFetchCommand())
	cmd.AddCommand(c.resourcesBrowseCommand())

	return cmd
}

// resourcesListCommand creates the "resources list" subcommand.
func (c *CLI) resourcesListCommand() *cobra.Command {
	var populate bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered resource keys",
		Long: `List the keys of the resource registry.

Without --populate only the built-in query client is registered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				s   *session
				err error
			)
			if populate {
				s, err = c.populated(ctx)
			} else {
				s, err = c.newSession(ctx)
			}
			if err != nil {
				return err
			}
			defer s.Close()

			for _, key := range s.registry.AvailableResources() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&populate, "populate", "p", false, "fetch the catalog from the server first")
	return cmd
}

// resourcesFetchCommand creates the "resources fetch" subcommand.
func (c *CLI) resourcesFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Print the raw resource catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			raw, err := s.registry.FetchResources(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), raw)
		},
	}
}

// resourcesBrowseCommand creates the "resources browse" subcommand.
func (c *CLI) resourcesBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a resource interactively and show its field metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.populated(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			rows := resourceRows(s.registry)
			if len(rows) == 0 {
				printWarning("No entity resources registered")
				return nil
			}

			result, err := tea.NewProgram(NewResourceListModel(rows), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			selected := result.(ResourceListModel).Selected
			if selected == nil {
				return nil
			}

			e, _ := s.registry.Entity(selected.Key)
			resp, err := e.Options(ctx)
			if err != nil {
				return err
			}
			printSuccess("%s", StyleHighlight.Render(selected.Key))
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}
}

// resourceRows lists the entity clients of ww sorted by key.
func resourceRows(ww *waterwheel.Waterwheel) []ResourceRow {
	var rows []ResourceRow
	for _, key := range ww.AvailableResources() {
		e, ok := ww.Entity(key)
		if !ok {
			continue
		}
		rows = append(rows, ResourceRow{
			Key:        key,
			EntityType: e.EntityType(),
			Bundle:     e.Bundle(),
			Methods:    methodsOf(e),
		})
	}
	return rows
}

// methodsOf returns the HTTP verbs e supports, in CRUD order.
func methodsOf(e *resource.Entity) []string {
	d := e.Descriptor()
	var out []string
	for _, m := range []string{http.MethodPost, http.MethodGet, http.MethodPatch, http.MethodDelete} {
		if d.Methods[m] != "" {
			out = append(out, m)
		}
	}
	return out
}
