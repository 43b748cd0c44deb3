package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/inicheck/internal/cli"
	httpAdapter "github.com/aretw0/inicheck/pkg/adapters/http"
	"github.com/aretw0/inicheck/pkg/observability"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP check server",
	Long: `Serves the master schema over HTTP. Clients POST configurations to /check
and receive the same report the check command prints as JSON. Prometheus
metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		port, _ := cmd.Flags().GetString("port")

		logger, err := cli.NewLogger(opts)
		if err != nil {
			return err
		}
		master, err := schema.Load(opts.SchemaPath)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		handler, err := httpAdapter.NewHandler(master,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithHooks(metrics.Hooks().Merge(observability.LogHooks(logger))),
			httpAdapter.WithMetrics(observability.Handler(reg)),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting inicheck server", "addr", srv.Addr, "schema", opts.SchemaPath)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("start shutdown", "signal", ctx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to stop server: %w", err)
				}
			}
			logger.Info("inicheck server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
