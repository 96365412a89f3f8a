package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpiface "github.com/riskrank/riskrank/internal/interfaces/http"
)

func newMonitorCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve the monitoring endpoints",
		Long: `Starts the read-only HTTP server: /health, Prometheus /metrics, and
/report/{code} for on-demand analysis. Blocks until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, analyzer, err := buildStack(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.MonitorAddr
			}

			server := httpiface.NewServer(addr, analyzer)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
