package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nfrund/applydash/internal/app"
	"github.com/nfrund/applydash/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the dashboard, refreshing statistics, applications and campaigns
from the workflow webhooks every interval. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			s, err := server.New(cfg, app.NewModules(app.Settings{RefreshInterval: interval}), server.WithFs(c.fs))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := s.Start(ctx); err != nil {
				return err
			}
			slog.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default 30s)")
	return cmd
}
