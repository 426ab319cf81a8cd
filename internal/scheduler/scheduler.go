// Package scheduler drives periodic refresh cycles over the fleet and
// publishes each completed cycle to the snapshot cache.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"evalgo.org/fleetstatus/internal/snapshot"
	"evalgo.org/fleetstatus/models"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 5 * time.Minute

// ErrCycleInProgress is returned when a cycle is requested while another
// one is still running. The request is dropped, not queued.
var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// HostSource enumerates the hosts to check in a cycle.
type HostSource interface {
	Hosts(ctx context.Context) ([]models.HostConfig, error)
}

// HostProber checks one host. It must always return a record.
type HostProber interface {
	Probe(ctx context.Context, host models.HostConfig) models.HostStatusRecord
}

// PublishHook is called after every published snapshot.
type PublishHook func(models.FleetSnapshot)

// Observer receives cycle outcomes, typically to export them as metrics.
type Observer interface {
	CycleCompleted(snap models.FleetSnapshot, duration time.Duration)
	CycleSkipped()
	CycleFailed()
}

// Scheduler manages refresh cycles
type Scheduler struct {
	hosts    HostSource
	prober   HostProber
	cache    *snapshot.Cache
	interval time.Duration
	logger   *slog.Logger
	observer Observer
	hooks    []PublishHook
	now      func() time.Time

	// inFlight guards against overlapping cycles
	inFlight atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithObserver reports cycle outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithPublishHook registers h to run after each publish.
func WithPublishHook(h PublishHook) Option {
	return func(s *Scheduler) {
		s.hooks = append(s.hooks, h)
	}
}

// New creates a new scheduler instance
func New(hosts HostSource, prober HostProber, cache *snapshot.Cache, interval time.Duration, logger *slog.Logger, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		hosts:    hosts,
		prober:   prober,
		cache:    cache,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the first cycle immediately and then one per interval until ctx
// is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("scheduler started", "interval", s.interval)

	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the loop and any cycle in flight, and waits for the loop to
// exit. It is a no-op on a scheduler that is not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// Busy reports whether a cycle is currently running.
func (s *Scheduler) Busy() bool {
	return s.inFlight.Load()
}

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Evaluate immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Info("refresh already in progress, skipping")
	case ctx.Err() != nil:
		s.logger.Debug("refresh cycle abandoned", "error", err)
	default:
		s.logger.Error("refresh cycle failed, keeping previous snapshot", "error", err)
	}
}

// RunOnce performs one complete cycle and publishes the result. If a cycle
// is already running it returns ErrCycleInProgress without doing anything.
// If the host list cannot be read, or ctx is cancelled before the cycle
// completes, nothing is published and the previous snapshot remains.
func (s *Scheduler) RunOnce(ctx context.Context) (models.FleetSnapshot, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		if s.observer != nil {
			s.observer.CycleSkipped()
		}
		return models.FleetSnapshot{}, ErrCycleInProgress
	}
	defer s.inFlight.Store(false)

	start := s.now()

	hosts, err := s.hosts.Hosts(ctx)
	if err != nil {
		if s.observer != nil {
			s.observer.CycleFailed()
		}
		return models.FleetSnapshot{}, fmt.Errorf("enumerate hosts: %w", err)
	}

	s.logger.Info("starting refresh cycle", "hosts", len(hosts))

	records := s.probeAll(ctx, hosts)

	if err := ctx.Err(); err != nil {
		return models.FleetSnapshot{}, fmt.Errorf("cycle interrupted: %w", err)
	}

	snap := models.FleetSnapshot{
		ID:          models.GenerateID("cycle"),
		CompletedAt: s.now().UTC(),
		Records:     records,
	}
	s.cache.Publish(snap)

	duration := s.now().Sub(start)
	s.logger.Info("refresh cycle complete",
		"cycle", snap.ID,
		"hosts", len(records),
		"online", snap.OnlineCount(),
		"duration", duration)

	if s.observer != nil {
		s.observer.CycleCompleted(snap, duration)
	}
	for _, h := range s.hooks {
		h(snap)
	}
	return snap, nil
}

// probeAll checks every host concurrently. Each goroutine writes only its
// own slot, so records come back in host-list order.
func (s *Scheduler) probeAll(ctx context.Context, hosts []models.HostConfig) []models.HostStatusRecord {
	records := make([]models.HostStatusRecord, len(hosts))

	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host models.HostConfig) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("host probe panicked", "host", host.Name, "panic", r)
					records[i] = models.HostStatusRecord{
						Name:      host.Name,
						Location:  models.UnknownLocation(),
						LastCheck: s.now().UTC(),
					}
				}
			}()
			records[i] = s.prober.Probe(ctx, host)
		}(i, host)
	}
	wg.Wait()

	return records
}
