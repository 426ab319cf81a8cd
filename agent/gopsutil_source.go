package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// GopsutilSource reads measurements from the local host through gopsutil.
// A group reports an error only when none of its values could be read.
type GopsutilSource struct {
	logger *slog.Logger
}

// NewGopsutilSource returns a Source for the local host.
func NewGopsutilSource(logger *slog.Logger) *GopsutilSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GopsutilSource{logger: logger}
}

// CPU implements Source.
func (s *GopsutilSource) CPU(ctx context.Context) (CPUReading, error) {
	var r CPUReading
	var errs []error

	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("cores: %w", err))
	} else {
		r.Cores = &n
	}

	// interval 0 compares against the previous call
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else if len(pct) > 0 {
		r.LoadPercent = &pct[0]
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load average: %w", err))
	} else if avg != nil {
		r.LoadAverage = &[3]float64{avg.Load1, avg.Load5, avg.Load15}
	}

	if r.Cores == nil && r.LoadPercent == nil && r.LoadAverage == nil {
		return r, errors.Join(errs...)
	}
	s.logPartial("cpu", errs)
	return r, nil
}

// Memory implements Source.
func (s *GopsutilSource) Memory(ctx context.Context) (MemoryReading, error) {
	var r MemoryReading
	var errs []error

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("virtual memory: %w", err))
	} else {
		r.Total = &vm.Total
		r.Active = &vm.Active
	}

	if sw, err := mem.SwapMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("swap: %w", err))
	} else {
		r.SwapTotal = &sw.Total
		r.SwapUsed = &sw.Used
	}

	if len(errs) == 2 {
		return r, errors.Join(errs...)
	}
	s.logPartial("memory", errs)
	return r, nil
}

// Filesystems implements Source.
func (s *GopsutilSource) Filesystems(ctx context.Context) ([]FilesystemReading, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("partitions: %w", err)
	}

	out := make([]FilesystemReading, 0, len(parts))
	for _, p := range parts {
		fr := FilesystemReading{Mount: p.Mountpoint}
		if u, err := disk.UsageWithContext(ctx, p.Mountpoint); err != nil {
			s.logger.Debug("filesystem usage unavailable", "mount", p.Mountpoint, "error", err)
		} else {
			fr.Size = &u.Total
			fr.Used = &u.Used
			fr.UsePercent = &u.UsedPercent
		}
		out = append(out, fr)
	}
	return out, nil
}

// Network implements Source.
func (s *GopsutilSource) Network(ctx context.Context) (NetworkReading, error) {
	var r NetworkReading

	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return r, fmt.Errorf("io counters: %w", err)
	}
	for _, c := range counters {
		r.Interfaces = append(r.Interfaces, InterfaceCounters{
			Name:    c.Name,
			RxBytes: &c.BytesRecv,
			TxBytes: &c.BytesSent,
		})
	}

	r.DefaultInterface = s.defaultInterface(ctx)
	return r, nil
}

// defaultInterface prefers the kernel's default route and falls back to the
// first interface that is up and not loopback.
func (s *GopsutilSource) defaultInterface(ctx context.Context) string {
	name, err := readDefaultRoute()
	if err == nil {
		return name
	}
	s.logger.Debug("default route unavailable, guessing interface", "error", err)

	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if slices.Contains(iface.Flags, "up") && !slices.Contains(iface.Flags, "loopback") {
			return iface.Name
		}
	}
	return ""
}

// Uptime implements Source.
func (s *GopsutilSource) Uptime(ctx context.Context) (UptimeReading, error) {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return UptimeReading{}, fmt.Errorf("uptime: %w", err)
	}
	return UptimeReading{Seconds: &up}, nil
}

func (s *GopsutilSource) logPartial(group string, errs []error) {
	if len(errs) > 0 {
		s.logger.Debug("partial metrics reading", "group", group, "error", errors.Join(errs...))
	}
}
