package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation pipeline over HTTP",
		Long: `Serve the evaluation pipeline over HTTP until interrupted.

Endpoints:
  GET  /healthz
  POST /v1/eval        ?policy=lenient&incremental=true
  POST /v1/path
  POST /v1/categorize
  POST /v1/render      ?out=svg&detailed=true

The request body is a scene; pass ?format=hcl (or a Content-Type) for
formats other than TOML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			c.Logger.Info("starting server", "addr", addr, "cache", cfg.Cache.Backend)
			srv := server.New(runner, c.Logger, server.Config{Addr: addr})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the output cache")
	return cmd
}
