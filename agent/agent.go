// Package agent is the metrics agent that runs on every monitored host.
//
// The agent answers GET /metrics with one normalized snapshot of the local
// host: CPU load and load averages, memory and swap, root filesystem usage,
// throughput of the default network interface and uptime. The five
// measurement groups are read concurrently on every request; a group that
// cannot be read is reported as zeros instead of failing the request.
//
// Only when nothing at all could be measured does the endpoint answer
// 500 with {"error": "Failed to fetch metrics", "details": "..."}.
//
// Network throughput is computed from the byte counters of consecutive
// requests, so the first request after start always reports zero rates.
//
// Example usage:
//
//	a := agent.New(agent.Config{Addr: "0.0.0.0:9101", Path: "/metrics"},
//	    agent.NewGopsutilSource(logger), logger)
//	if err := a.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"evalgo.org/fleetstatus/models"
)

// Config holds the agent listener settings.
type Config struct {
	// Addr is the listen address, host:port
	Addr string

	// Path serves metrics snapshots (default /metrics)
	Path string

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration
}

// Agent serves metrics snapshots of the local host over HTTP.
type Agent struct {
	cfg       Config
	collector *Collector
	logger    *slog.Logger
	startTime time.Time

	served atomic.Int64
	failed atomic.Int64
	// lastCollect is the duration of the last collection in nanoseconds
	lastCollect atomic.Int64
}

// New creates an agent reading from source.
func New(cfg Config, source Source, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Agent{
		cfg:       cfg,
		collector: NewCollector(source, logger),
		logger:    logger,
		startTime: time.Now(),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts the server down gracefully.
func (a *Agent) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (a *Agent) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      a.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	a.logger.Info("metrics agent listening", "addr", ln.Addr().String(), "path", a.cfg.Path)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("agent http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("agent shutdown: %w", err)
	}
	a.logger.Info("metrics agent stopped")
	return nil
}

// Collect takes one snapshot and updates the agent counters.
func (a *Agent) Collect(ctx context.Context) (*models.MetricsSnapshot, error) {
	start := time.Now()
	snap, err := a.collector.Collect(ctx)
	a.lastCollect.Store(int64(time.Since(start)))
	if err != nil {
		a.failed.Add(1)
		return nil, err
	}
	a.served.Add(1)
	return snap, nil
}
