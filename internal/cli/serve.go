package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/api"
	"github.com/matzehuels/dendro/pkg/observability"
	"github.com/matzehuels/dendro/pkg/registry"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clustering API and live widgets over HTTP",
		Long: `Serve the clustering API and live widgets over HTTP.

Routes:
  POST   /v1/cluster              cluster an inline dataset
  POST   /v1/render               render one format
  POST   /v1/widgets              create a live widget
  GET    /v1/widgets/{id}         scene JSON, or ?format=svg|png
  POST   /v1/widgets/{id}/click   click at scene coordinates
  POST   /v1/widgets/{id}/select  select a node, or null to clear
  DELETE /v1/widgets/{id}
  GET    /healthz
  GET    /metrics

Widgets expire after [server] widget_ttl without use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	hooks.Install()

	srv := api.New(api.Options{
		Runner: runner,
		Registry: registry.New(registry.Options{
			TTL:        time.Duration(c.Config.Server.WidgetTTL),
			MaxWidgets: c.Config.Server.MaxWidgets,
		}),
		Logger:   c.Logger,
		Metrics:  hooks,
		Gatherer: reg,
		MaxBody:  c.Config.Server.MaxBody,
		Defaults: c.Config.Apply,
	})
	printInfo("Serving on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
