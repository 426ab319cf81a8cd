package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"evalgo.org/fleetstatus/models"
)

// RootMount is the only filesystem reported.
const RootMount = "/"

// CollectionError is returned when no measurement could be taken at all.
type CollectionError struct {
	Cause error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("metrics collection failed: %v", e.Cause)
}

func (e *CollectionError) Unwrap() error {
	return e.Cause
}

// netSample is the previous counter reading used for rate calculation.
type netSample struct {
	iface string
	rx    uint64
	tx    uint64
	at    time.Time
}

// Collector turns raw Source readings into a normalized MetricsSnapshot.
// Every field of the snapshot is always present; a group that fails or a
// value that is missing falls back to zero.
type Collector struct {
	source Source
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	prev *netSample
}

// NewCollector creates a collector over source.
func NewCollector(source Source, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

const groupCount = 5

// Collect gathers all five measurement groups concurrently and assembles a
// snapshot. A failing group only zeroes its own section. If every group
// fails, or the source panics, Collect returns a *CollectionError.
func (c *Collector) Collect(ctx context.Context) (*models.MetricsSnapshot, error) {
	var (
		cpu     CPUReading
		mem     MemoryReading
		fs      []FilesystemReading
		network NetworkReading
		uptime  UptimeReading
	)

	errs := make([]error, groupCount)
	var g errgroup.Group

	// Groups report failures through errs, never through g, so that one
	// failing group does not cut the others short.
	run := func(i int, name string, fn func() error) {
		g.Go(func() (gerr error) {
			defer func() {
				if r := recover(); r != nil {
					gerr = fmt.Errorf("%s reading panicked: %v", name, r)
				}
			}()
			if ferr := fn(); ferr != nil {
				c.logger.Warn("metrics group failed, using defaults", "group", name, "error", ferr)
				errs[i] = fmt.Errorf("%s: %w", name, ferr)
			}
			return nil
		})
	}

	run(0, "cpu", func() error {
		r, err := c.source.CPU(ctx)
		if err == nil {
			cpu = r
		}
		return err
	})
	run(1, "memory", func() error {
		r, err := c.source.Memory(ctx)
		if err == nil {
			mem = r
		}
		return err
	})
	run(2, "filesystems", func() error {
		r, err := c.source.Filesystems(ctx)
		if err == nil {
			fs = r
		}
		return err
	})
	run(3, "network", func() error {
		r, err := c.source.Network(ctx)
		if err == nil {
			network = r
		}
		return err
	})
	run(4, "uptime", func() error {
		r, err := c.source.Uptime(ctx)
		if err == nil {
			uptime = r
		}
		return err
	})

	if perr := g.Wait(); perr != nil {
		c.logger.Error("metrics collection aborted", "error", perr)
		return nil, &CollectionError{Cause: perr}
	}

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	if failed == groupCount {
		return nil, &CollectionError{Cause: errors.Join(errs...)}
	}

	now := c.now()

	snap := &models.MetricsSnapshot{
		CPU:        normalizeCPU(cpu),
		Disk:       normalizeDisk(fs),
		Network:    c.normalizeNetwork(network, now),
		System:     models.SystemMetrics{UptimeSeconds: uintOrZero(uptime.Seconds)},
		CapturedAt: now.UTC(),
	}
	snap.Memory, snap.Swap = normalizeMemory(mem)
	return snap, nil
}

func normalizeCPU(r CPUReading) models.CPUMetrics {
	m := models.CPUMetrics{
		CoreCount:    intOrZero(r.Cores),
		UsagePercent: round2(floatOrZero(r.LoadPercent)),
	}
	if r.LoadAverage != nil {
		for i, v := range r.LoadAverage {
			m.LoadAverage[i] = round2(finite(v))
		}
	}
	return m
}

func normalizeMemory(r MemoryReading) (mem, swap models.MemoryMetrics) {
	total := uintOrZero(r.Total)
	active := uintOrZero(r.Active)
	mem = models.MemoryMetrics{
		TotalBytes:   total,
		UsedBytes:    active,
		UsagePercent: percentOf(active, total),
	}

	swapTotal := uintOrZero(r.SwapTotal)
	swapUsed := uintOrZero(r.SwapUsed)
	swap = models.MemoryMetrics{
		TotalBytes:   swapTotal,
		UsedBytes:    swapUsed,
		UsagePercent: percentOf(swapUsed, swapTotal),
	}
	return mem, swap
}

func normalizeDisk(fs []FilesystemReading) models.DiskMetrics {
	for _, f := range fs {
		if f.Mount != RootMount {
			continue
		}
		size := uintOrZero(f.Size)
		used := uintOrZero(f.Used)
		pct := percentOf(used, size)
		if f.UsePercent != nil {
			pct = round2(finite(*f.UsePercent))
		}
		return models.DiskMetrics{
			Path:         f.Mount,
			TotalBytes:   size,
			UsedBytes:    used,
			UsagePercent: pct,
		}
	}
	return models.DiskMetrics{Path: models.NotAvailable}
}

// normalizeNetwork picks the default interface and turns its counters into
// rates against the previous sample. The first sample, an interface change
// or a counter reset all yield zero rates.
func (c *Collector) normalizeNetwork(r NetworkReading, now time.Time) models.NetworkMetrics {
	m := models.NetworkMetrics{InterfaceName: r.DefaultInterface}
	if m.InterfaceName == "" {
		m.InterfaceName = models.NotAvailable
	}

	var counters *InterfaceCounters
	for i := range r.Interfaces {
		if r.Interfaces[i].Name == r.DefaultInterface && r.DefaultInterface != "" {
			counters = &r.Interfaces[i]
			break
		}
	}
	if counters == nil || counters.RxBytes == nil || counters.TxBytes == nil {
		return m
	}

	cur := &netSample{iface: counters.Name, rx: *counters.RxBytes, tx: *counters.TxBytes, at: now}

	c.mu.Lock()
	prev := c.prev
	c.prev = cur
	c.mu.Unlock()

	if prev == nil || prev.iface != cur.iface {
		return m
	}
	elapsed := cur.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return m
	}
	m.RxBytesPerSec = rate(prev.rx, cur.rx, elapsed)
	m.TxBytesPerSec = rate(prev.tx, cur.tx, elapsed)
	return m
}

func rate(prev, cur uint64, elapsed float64) uint64 {
	if cur < prev {
		return 0
	}
	return uint64(math.Round(float64(cur-prev) / elapsed))
}

func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return finite(*v)
}

func intOrZero(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func uintOrZero(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
