package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/models"
)

func testSnapshot() models.FleetSnapshot {
	return models.FleetSnapshot{
		ID:          "cycle:1",
		CompletedAt: time.Unix(1714564800, 0),
		Records: []models.HostStatusRecord{
			{Name: "fra-1", IsOnline: true, Metrics: models.MetricsStatusError(500)},
			{Name: "ams-2", IsOnline: true, Metrics: models.MetricsNotConfigured()},
			{Name: "lon-3"},
		},
	}
}

func TestTelemetry_CycleCompleted(t *testing.T) {
	tel := New()
	tel.CycleCompleted(testSnapshot(), 1500*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultCompleted)))
	assert.Equal(t, float64(3), testutil.ToFloat64(tel.hosts))
	assert.Equal(t, float64(2), testutil.ToFloat64(tel.hostsOnline))
	assert.Equal(t, float64(1714564800), testutil.ToFloat64(tel.lastCycle))
	assert.Equal(t, float64(1), testutil.ToFloat64(tel.hostUp.WithLabelValues("fra-1")))
	assert.Equal(t, float64(0), testutil.ToFloat64(tel.hostUp.WithLabelValues("lon-3")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tel.agentErrors.WithLabelValues("fra-1")))
	assert.Equal(t, 1, testutil.CollectAndCount(tel.agentErrors, "fleetstatus_agent_errors_total"))
}

func TestTelemetry_SkippedAndFailed(t *testing.T) {
	tel := New()
	tel.CycleSkipped()
	tel.CycleSkipped()
	tel.CycleFailed()

	assert.Equal(t, float64(2), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultFailed)))
	assert.Equal(t, float64(0), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultCompleted)))
}

func TestTelemetry_Handler(t *testing.T) {
	tel := New()
	tel.CycleCompleted(testSnapshot(), time.Second)

	srv := httptest.NewServer(tel.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `fleetstatus_host_up{host="fra-1"} 1`))
	assert.Contains(t, text, "fleetstatus_cycle_duration_seconds_count 1")
	assert.Contains(t, text, "go_goroutines")
}
