package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/pkg/mockserver"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// mockCommand creates the mock command.
func (c *CLI) mockCommand() *cobra.Command {
	var (
		addr   string
		noAuth bool
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a local mock API with demo content",
		Long: `Run an in-memory Drupal-like API for trying out waterwheel.

The server requires the --user/--pass credentials (default admin/admin)
unless --no-auth is given.`,
		Example: `  waterwheel mock --addr :8080 &
  waterwheel --base http://localhost:8080 --user admin --pass admin resources list -p`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			var opts []mockserver.Option
			opts = append(opts, mockserver.WithLogger(logger))
			if !noAuth {
				creds := &transport.Credentials{User: "admin", Pass: "admin"}
				if c.user != "" {
					creds = &transport.Credentials{User: c.user, Pass: c.pass}
				}
				opts = append(opts, mockserver.WithCredentials(creds))
			}
			mock := mockserver.New(opts...)
			mock.Seed()

			srv := &http.Server{Addr: addr, Handler: mock, ReadHeaderTimeout: 5 * time.Second}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			printSuccess("Mock API listening on %s", StyleLink.Render("http://localhost"+addr))

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			printInfo("Mock API stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "accept requests without credentials")
	return cmd
}
