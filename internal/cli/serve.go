package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/internal/web"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web console",
		Long: `Serve the console on a local address until interrupted. /metrics exposes
Prometheus counters.

Examples:
  perks-admin serve
  perks-admin serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withConsole(cmd, func(_ context.Context, c *perksAdmin.Console) error {
				a.printer.Info("Web console on http://%s", addr)
				return web.Serve(ctx, addr, web.NewRouter(c, a.logger), a.logger)
			})
		},
	}
	cmd.Flags().String("addr", "", "listen address (default: serve.addr)")
	return cmd
}
