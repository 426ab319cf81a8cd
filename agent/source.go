package agent

import "context"

// Raw measurements as reported by a Source. Every value is optional: a nil
// pointer means the platform or the library could not supply it.

// CPUReading is the CPU measurement group.
type CPUReading struct {
	Cores       *int
	LoadPercent *float64
	LoadAverage *[3]float64
}

// MemoryReading holds physical memory and swap counters.
type MemoryReading struct {
	Total     *uint64
	Active    *uint64
	SwapTotal *uint64
	SwapUsed  *uint64
}

// FilesystemReading is one mounted filesystem.
type FilesystemReading struct {
	Mount      string
	Size       *uint64
	Used       *uint64
	UsePercent *float64
}

// InterfaceCounters are cumulative byte counters for one interface.
type InterfaceCounters struct {
	Name    string
	RxBytes *uint64
	TxBytes *uint64
}

// NetworkReading holds the default interface name and all counters.
type NetworkReading struct {
	DefaultInterface string
	Interfaces       []InterfaceCounters
}

// UptimeReading is the host uptime.
type UptimeReading struct {
	Seconds *uint64
}

// Source gathers raw OS measurements. Each method is one measurement group;
// the collector calls them concurrently and a failing group does not affect
// the others.
type Source interface {
	CPU(ctx context.Context) (CPUReading, error)
	Memory(ctx context.Context) (MemoryReading, error)
	Filesystems(ctx context.Context) ([]FilesystemReading, error)
	Network(ctx context.Context) (NetworkReading, error)
	Uptime(ctx context.Context) (UptimeReading, error)
}
