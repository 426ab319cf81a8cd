package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"evalgo.org/fleetstatus/internal/api"
	"evalgo.org/fleetstatus/internal/scheduler"
	"evalgo.org/fleetstatus/internal/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the status server",
	Long: `Start the refresh scheduler and the HTTP API.

The first refresh cycle starts immediately, then one runs every
fleet.refresh_interval. Until the first cycle completes the API serves
an empty status list.`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	tel := telemetry.New()

	server := api.New(cfg, eng.cache, logger,
		api.WithMetricsHandler(tel.Handler()),
		api.WithGeoEnabled(eng.resolver.Enabled()),
	)

	sched := eng.scheduler(
		scheduler.WithObserver(tel),
		scheduler.WithPublishHook(server.BroadcastSnapshot),
	)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			_ = server.Shutdown(context.Background())
			return err
		}

		<-gctx.Done()
		logger.Info("shutdown signal received")
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}
