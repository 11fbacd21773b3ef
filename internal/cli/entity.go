package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/resource"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// withEntity populates the registry, looks up key and runs fn with its
// client.
func (c *CLI) withEntity(ctx context.Context, key string, fn func(*resource.Entity) (*transport.Response, error)) (*transport.Response, error) {
	if err := errors.ValidateResourceKey(key); err != nil {
		return nil, err
	}
	s, err := c.populated(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	e, ok := s.registry.Entity(key)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown resource %q (see 'waterwheel resources list --populate')", key)
	}
	return fn(e)
}

// getCommand creates the get command.
func (c *CLI) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Read one entity",
		Example: `  waterwheel get node.article 1
  waterwheel get comment 12`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateIdentifier(args[1]); err != nil {
				return err
			}
			resp, err := c.withEntity(cmd.Context(), args[0], func(e *resource.Entity) (*transport.Response, error) {
				return e.Read(cmd.Context(), args[1])
			})
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}
}

// createCommand creates the create command.
func (c *CLI) createCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create an entity from JSON",
		Example: `  waterwheel create comment --data comment.json
  echo '{"subject": "Hi"}' | waterwheel create comment --data -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readData(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			resp, err := c.withEntity(cmd.Context(), args[0], func(e *resource.Entity) (*transport.Response, error) {
				return e.Create(cmd.Context(), body)
			})
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body: a file, - for stdin, or inline JSON")
	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Patch an entity with JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateIdentifier(args[1]); err != nil {
				return err
			}
			body, err := readData(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			resp, err := c.withEntity(cmd.Context(), args[0], func(e *resource.Entity) (*transport.Response, error) {
				return e.Update(cmd.Context(), args[1], body)
			})
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body: a file, - for stdin, or inline JSON")
	return cmd
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateIdentifier(args[1]); err != nil {
				return err
			}
			_, err := c.withEntity(cmd.Context(), args[0], func(e *resource.Entity) (*transport.Response, error) {
				return e.Delete(cmd.Context(), args[1])
			})
			if err != nil {
				return err
			}
			printSuccess("Deleted %s %s", args[0], StyleNumber.Render(args[1]))
			return nil
		},
	}
}
