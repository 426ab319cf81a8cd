package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"evalgo.org/fleetstatus/internal/config"
	"evalgo.org/fleetstatus/internal/geo"
	"evalgo.org/fleetstatus/internal/probe"
	"evalgo.org/fleetstatus/internal/scheduler"
	"evalgo.org/fleetstatus/internal/snapshot"
)

// engine holds the components shared by the server and probe commands.
type engine struct {
	fleet    *config.FleetSource
	resolver *geo.MaxMindResolver
	pipeline *probe.Pipeline
	cache    *snapshot.Cache
	logger   *slog.Logger
	refresh  time.Duration
}

func buildEngine(c *config.Config, logger *slog.Logger) (*engine, error) {
	prober, err := probe.NewProber(probe.ProberConfig{
		Mode:       c.Fleet.ProbeMode,
		Timeout:    c.Fleet.ProbeTimeout,
		Port:       c.Fleet.ProbePort,
		Privileged: c.Fleet.Privileged,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prober: %w", err)
	}

	checkProber(context.Background(), prober, c.Fleet, logger)

	fleet := config.NewFleetSource(c.Fleet.File, logger)
	if fleet.Len() == 0 {
		logger.Warn("fleet is empty, snapshots will contain no hosts", "file", c.Fleet.File)
	}

	resolver := geo.Open(c.GeoIP.Database, logger)

	return &engine{
		fleet:    fleet,
		resolver: resolver,
		pipeline: probe.NewPipeline(prober, resolver, probe.NewHTTPFetcher(c.Fleet.AgentTimeout), logger),
		cache:    snapshot.New(),
		logger:   logger,
		refresh:  c.Fleet.RefreshInterval,
	}, nil
}

// checkProber probes the loopback address once and logs an error when the
// prober cannot work on this machine. The engine still starts; every host
// will be reported offline until the configuration is fixed.
func checkProber(ctx context.Context, prober probe.Prober, fc config.FleetConfig, logger *slog.Logger) bool {
	err := probe.SelfCheck(ctx, prober)
	if err == nil {
		return true
	}

	hint := "check that the probe port is reachable locally"
	if fc.ProbeMode == "" || strings.EqualFold(fc.ProbeMode, probe.ModeICMP) {
		hint = "set fleet.privileged=true (requires CAP_NET_RAW) or fleet.probe_mode=tcp"
		if fc.Privileged {
			hint = "grant CAP_NET_RAW to the process or set fleet.probe_mode=tcp"
		}
	}
	logger.Error("reachability self-check failed, all hosts will be reported offline",
		"mode", fc.ProbeMode,
		"error", err,
		"hint", hint,
	)
	return false
}

func (e *engine) scheduler(opts ...scheduler.Option) *scheduler.Scheduler {
	return scheduler.New(e.fleet, e.pipeline, e.cache, e.refresh, e.logger, opts...)
}

func (e *engine) Close() error {
	return e.resolver.Close()
}
