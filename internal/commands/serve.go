package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/ingestion"
	"github.com/spendlens/spendlens/internal/report"
	"github.com/spendlens/spendlens/internal/retag"
	"github.com/spendlens/spendlens/internal/server"
	tagsapi "github.com/spendlens/spendlens/internal/tags/api"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the retag scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	var health server.HealthChecker
	if a.db != nil {
		health = a.db
	}

	srv := server.New(a.cfg.Server.Addr(), health, server.Options{
		Mode:         a.cfg.Server.Mode,
		MaxBodyBytes: int64(a.cfg.Server.MaxBodySizeMB) << 20,
	})
	ingestion.NewService(a.store, a.registry, a.tagger, a.cfg.Server.MaxBodySizeMB).RegisterRoutes(srv.Engine)
	tagsapi.NewService(a.registry, a.store, a.tagger).RegisterRoutes(srv.Engine)
	report.NewService(a.store, a.registry, a.tagger, a.loc).RegisterRoutes(srv.Engine)

	schedulerDone := make(chan struct{})
	if a.cfg.Retag.Enabled {
		scheduler := retag.NewScheduler(a.cfg.Retag.IntervalDuration(), retag.NewJob(a.store, a.registry, a.tagger))
		go func() {
			defer close(schedulerDone)
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		close(schedulerDone)
		slog.Info("Retag scheduler disabled by config")
	}

	// HTTP server blocks until ctx is cancelled.
	err := srv.Run(ctx)
	<-schedulerDone

	slog.Info("Shutdown complete")
	return err
}
