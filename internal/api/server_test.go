package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/internal/config"
	"evalgo.org/fleetstatus/internal/snapshot"
	"evalgo.org/fleetstatus/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*config.Config), opts ...Option) (*Server, *snapshot.Cache) {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}

	cache := snapshot.New()
	s := New(cfg, cache, quietLogger(), opts...)
	t.Cleanup(s.stopHub)
	return s, cache
}

func sampleFleetSnapshot() models.FleetSnapshot {
	return models.FleetSnapshot{
		ID:          "cycle:test",
		CompletedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Records: []models.HostStatusRecord{
			{
				Name:      "fra-1",
				IsOnline:  true,
				Location:  models.NewGeoInfo("Frankfurt am Main", "DE"),
				Metrics:   models.MetricsNotConfigured(),
				LastCheck: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				Name:      "ams-1",
				Location:  models.UnknownLocation(),
				LastCheck: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func doGet(s http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestListStatus_BeforeFirstCycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/vps-status", "/api/v1/status"} {
		t.Run(path, func(t *testing.T) {
			rec := doGet(s, path, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestListStatus_ServesCachedRecords(t *testing.T) {
	s, cache := newTestServer(t, nil)
	cache.Publish(sampleFleetSnapshot())

	rec := doGet(s, "/api/vps-status", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)

	assert.Equal(t, "fra-1", records[0]["name"])
	assert.Equal(t, true, records[0]["isOnline"])
	assert.Equal(t, map[string]any{"info": models.AgentNotConfiguredInfo}, records[0]["metrics"])
	assert.Equal(t, "DE", records[0]["location"].(map[string]any)["country"])

	assert.Equal(t, "ams-1", records[1]["name"])
	assert.Nil(t, records[1]["metrics"])
	assert.Equal(t, "Unknown", records[1]["location"].(map[string]any)["city"])
}

func TestGetHostStatus(t *testing.T) {
	s, cache := newTestServer(t, nil)
	cache.Publish(sampleFleetSnapshot())

	rec := doGet(s, "/api/v1/status/ams-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var r models.HostStatusRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "ams-1", r.Name)
	assert.False(t, r.IsOnline)

	rec = doGet(s, "/api/v1/status/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "Host not found", apiErr.Message)
}

func TestGetSnapshot(t *testing.T) {
	s, cache := newTestServer(t, nil)

	rec := doGet(s, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"","completedAt":"0001-01-01T00:00:00Z","records":[]}`, rec.Body.String())

	cache.Publish(sampleFleetSnapshot())
	rec = doGet(s, "/api/v1/snapshot", nil)
	var snap models.FleetSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "cycle:test", snap.ID)
	assert.Len(t, snap.Records, 2)
}

func TestHealthCheck(t *testing.T) {
	s, cache := newTestServer(t, nil, WithGeoEnabled(true))

	rec := doGet(s, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var before HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, "healthy", before.Status)
	assert.Empty(t, before.SnapshotID)
	assert.Nil(t, before.CompletedAt)
	assert.True(t, before.GeoEnabled)

	cache.Publish(sampleFleetSnapshot())
	rec = doGet(s, "/health", nil)
	var after HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, "cycle:test", after.SnapshotID)
	require.NotNil(t, after.CompletedAt)
	assert.Equal(t, 2, after.Hosts)
	assert.Equal(t, 1, after.Online)
}

func TestFrontendConfig(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Frontend.APIURL = "https://status.example.com/api/vps-status"
		c.Frontend.RefreshInterval = 45 * time.Second
	})

	rec := doGet(s, "/config.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"apiUrl":"https://status.example.com/api/vps-status","refreshInterval":45000}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	t.Run("absent without handler", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		rec := doGet(s, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("served when configured", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("fleetstatus_hosts 3\n"))
		})
		s, _ := newTestServer(t, nil, WithMetricsHandler(h))
		rec := doGet(s, "/metrics", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "fleetstatus_hosts 3")
	})
}

func TestDocsRoute(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := doGet(s, "/docs/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/vps-status")
}

func TestAcceptHeader(t *testing.T) {
	s, _ := newTestServer(t, nil)

	t.Run("versioned api rejects non-json", func(t *testing.T) {
		rec := doGet(s, "/api/v1/status", map[string]string{"Accept": "text/html"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dashboard path ignores accept", func(t *testing.T) {
		for _, accept := range []string{"text/plain", "text/html", ""} {
			rec := doGet(s, "/api/vps-status", map[string]string{"Accept": accept})
			assert.Equal(t, http.StatusOK, rec.Code, accept)
			assert.JSONEq(t, `[]`, rec.Body.String())
		}
	})
}

func TestSecurityHeadersApplied(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := doGet(s, "/health", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Security.RateLimit = 1
	})

	first := doGet(s, "/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doGet(s, "/api/v1/status", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
