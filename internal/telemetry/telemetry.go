// Package telemetry exports refresh cycle outcomes as Prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evalgo.org/fleetstatus/models"
)

const namespace = "fleetstatus"

// Cycle results used as label values.
const (
	ResultCompleted = "completed"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
)

// Telemetry holds the server's metrics on a private registry.
type Telemetry struct {
	registry *prometheus.Registry

	cycleDuration prometheus.Histogram
	cycles        *prometheus.CounterVec
	lastCycle     prometheus.Gauge
	hosts         prometheus.Gauge
	hostsOnline   prometheus.Gauge
	hostUp        *prometheus.GaugeVec
	agentErrors   *prometheus.CounterVec
}

// New registers all collectors, including the Go runtime and process
// collectors, on a fresh registry.
func New() *Telemetry {
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of completed refresh cycles.",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Refresh cycles by result.",
		}, []string{"result"}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last snapshot was published.",
		}),
		hosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hosts",
			Help:      "Hosts in the last published snapshot.",
		}),
		hostsOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hosts_online",
			Help:      "Reachable hosts in the last published snapshot.",
		}),
		hostUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_up",
			Help:      "1 if the host was reachable in the last snapshot.",
		}, []string{"host"}),
		agentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_errors_total",
			Help:      "Metrics agent requests that ended in an error marker.",
		}, []string{"host"}),
	}

	t.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		t.cycleDuration,
		t.cycles,
		t.lastCycle,
		t.hosts,
		t.hostsOnline,
		t.hostUp,
		t.agentErrors,
	)

	// Expose every result series from the start.
	for _, r := range []string{ResultCompleted, ResultSkipped, ResultFailed} {
		t.cycles.WithLabelValues(r)
	}
	return t
}

// CycleCompleted records a published snapshot.
func (t *Telemetry) CycleCompleted(snap models.FleetSnapshot, duration time.Duration) {
	t.cycles.WithLabelValues(ResultCompleted).Inc()
	t.cycleDuration.Observe(duration.Seconds())
	t.lastCycle.Set(float64(snap.CompletedAt.Unix()))
	t.hosts.Set(float64(len(snap.Records)))
	t.hostsOnline.Set(float64(snap.OnlineCount()))

	t.hostUp.Reset()
	for _, r := range snap.Records {
		up := 0.0
		if r.IsOnline {
			up = 1
		}
		t.hostUp.WithLabelValues(r.Name).Set(up)
		if r.Metrics.IsError() {
			t.agentErrors.WithLabelValues(r.Name).Inc()
		}
	}
}

// CycleSkipped records a cycle dropped by the re-entrancy guard.
func (t *Telemetry) CycleSkipped() {
	t.cycles.WithLabelValues(ResultSkipped).Inc()
}

// CycleFailed records a cycle that could not enumerate hosts.
func (t *Telemetry) CycleFailed() {
	t.cycles.WithLabelValues(ResultFailed).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}

// Registry returns the underlying registry.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}
