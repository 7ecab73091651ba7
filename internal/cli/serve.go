package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"timesheet-service/internal/app"
	"timesheet-service/internal/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithServiceContext(app.ServiceName, app.Version)
			// Set as default logger so slog.Info() uses the same handler
			slog.SetDefault(log)

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log.Info("config loaded", "env", cfg.Env)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}

			// Start dependency health checks in background
			go application.StartHealthChecks(ctx)

			runErr := make(chan error, 1)
			go func() { runErr <- application.Run() }()

			select {
			case err = <-runErr:
				if err != nil {
					log.Error("server stopped unexpectedly", "error", err)
				}
			case <-ctx.Done():
				log.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
				return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
			}
			if err != nil {
				return err
			}

			log.Info("server exited gracefully")
			return nil
		},
	}
}
