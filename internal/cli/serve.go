package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"structuralign/internal/api"
	"structuralign/pkg/runstore"
)

// serveCommand starts the HTTP API: a second entry point into the
// alignment pipeline for batch systems that would rather POST a model
// path than shell out to align.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for triggering and polling alignment runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer runner.Close()

			var store runstore.Store
			if mongoURI != "" {
				store, err = runstore.NewMongoStore(cmd.Context(), mongoURI)
				if err != nil {
					return fmt.Errorf("connect to mongo: %w", err)
				}
			} else {
				store, err = newRunStore()
				if err != nil {
					return fmt.Errorf("open run store: %w", err)
				}
			}
			defer store.Close()

			srv := api.NewServer(runner, store, c.Logger)
			c.Logger.Info("serving", "addr", addr)
			return http.ListenAndServe(addr, srv.Router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI for run history (file store if empty)")

	return cmd
}
