package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdrpinto/coverage/internal/server"
	"github.com/pdrpinto/coverage/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over HTTP",
		Long:  `Starts an HTTP API for one-shot plans and step-by-step sessions, with Prometheus metrics at /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			if !cmd.Flags().Changed("addr") && cfg.MetricsAddr != "" {
				addr = cfg.MetricsAddr
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			collector, err := metrics.New(registry)
			if err != nil {
				return err
			}

			api := server.New(logger, collector.Hooks())
			handler := api.Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := server.Serve(ctx, addr, handler, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	return serveCmd
}
