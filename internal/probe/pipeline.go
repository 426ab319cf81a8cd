// Package probe checks one host per call: reachability, location and, for
// reachable hosts, the metrics reported by the host's agent.
package probe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"evalgo.org/fleetstatus/internal/geo"
	"evalgo.org/fleetstatus/models"
	"evalgo.org/fleetstatus/pkg/fleetstatus/client"
)

// Pipeline produces one HostStatusRecord per host. It holds no per-host
// state and is safe for concurrent use.
type Pipeline struct {
	prober   Prober
	resolver geo.Resolver
	fetcher  Fetcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline wires the sub-checks. resolver may be nil, in which case every
// record carries the unknown location.
func NewPipeline(prober Prober, resolver geo.Resolver, fetcher Fetcher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		prober:   prober,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Probe checks host and always returns a record. Reachability and location
// are resolved concurrently; the agent is only queried once the host is
// known to be reachable.
func (p *Pipeline) Probe(ctx context.Context, host models.HostConfig) models.HostStatusRecord {
	log := p.logger.With("host", host.Name, "address", host.Address)

	located := make(chan *models.GeoInfo, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("geo lookup panicked", "panic", r)
				located <- nil
			}
		}()
		located <- p.locate(host.Address)
	}()

	online := p.reachable(ctx, host, log)

	var metrics *models.MetricsResult
	if online {
		metrics = p.metrics(ctx, host, log)
	}

	location := <-located
	if location == nil {
		location = models.UnknownLocation()
	}

	return models.HostStatusRecord{
		Name:      host.Name,
		IsOnline:  online,
		Location:  location,
		Metrics:   metrics,
		LastCheck: p.now().UTC(),
	}
}

func (p *Pipeline) reachable(ctx context.Context, host models.HostConfig, log *slog.Logger) bool {
	if err := p.prober.Probe(ctx, host.Address); err != nil {
		// Uncategorized failures usually point at the prober, not the host.
		var perr *Error
		if errors.As(err, &perr) && perr.Reason == FailUnknown {
			log.Warn("reachability check failed", "error", err)
		} else {
			log.Debug("host unreachable", "error", err)
		}
		return false
	}
	return true
}

func (p *Pipeline) locate(address string) *models.GeoInfo {
	if p.resolver == nil {
		return nil
	}
	return p.resolver.Lookup(address)
}

func (p *Pipeline) metrics(ctx context.Context, host models.HostConfig, log *slog.Logger) *models.MetricsResult {
	if !host.HasAgent() {
		return models.MetricsNotConfigured()
	}

	snap, err := p.fetcher.Fetch(ctx, host.MetricsEndpoint)
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			log.Warn("agent request failed", "status", statusErr.Code)
			return models.MetricsStatusError(statusErr.Code)
		}
		log.Warn("agent fetch error", "error", err)
		return models.MetricsFetchError(err)
	}
	return models.MetricsOK(snap)
}
