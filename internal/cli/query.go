package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/pkg/errors"
)

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "query <entityType>",
		Short: "List entities of a type",
		Example: `  waterwheel query node --param range=10 --param sort=title
  waterwheel query comment --param offset=20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := parseParams(params)
			if err != nil {
				return err
			}

			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			q, ok := s.registry.Query()
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "query client is not available")
			}
			resp, err := q.Query(ctx, args[0], values)
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}
