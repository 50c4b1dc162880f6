package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/infrastructure/dashboard"
	"solarcalc/internal/infrastructure/env"
	"solarcalc/internal/infrastructure/logger"
	"solarcalc/internal/infrastructure/storage"
)

func newDashboardCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve stored run reports over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			envService := env.NewService()
			log, err := logger.New(envService.GetDefault("APP_ENV", "dev"), envService.GetDefault("LOG_LEVEL", "info"))
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Close()

			store, err := openStore(envService)
			if err != nil {
				return err
			}

			return dashboard.New(store, addr, log).Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	return cmd
}

func openStore(envService *env.Service) (output.ReportStore, error) {
	if dsn := envService.Get("POSTGRES_DSN"); dsn != "" {
		return storage.NewPostgresStore(dsn)
	}
	return storage.NewFileStore(envService.GetDefault("REPORTS_DIR", "solar_reports"))
}
