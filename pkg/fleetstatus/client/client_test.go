package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/models"
)

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New("http://status.example.net/", WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "http://status.example.net", c.baseURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, StatusPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"fra-1","isOnline":true,"location":{"city":"Frankfurt","country":"DE","flag":"🇩🇪"},"metrics":{"info":"Agent not configured for this server."},"lastCheck":"2024-05-01T12:00:00Z"},
			{"name":"ams-2","isOnline":false,"location":{"city":"Unknown","country":"N/A"},"metrics":null,"lastCheck":"2024-05-01T12:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	records, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fra-1", records[0].Name)
	assert.Equal(t, models.AgentNotConfiguredInfo, records[0].Metrics.Info)
	assert.Nil(t, records[1].Metrics)
	assert.Equal(t, "Unknown", records[1].Location.City)
}

func TestFetchMetrics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(models.MetricsSnapshot{
				CPU:  models.CPUMetrics{CoreCount: 8},
				Disk: models.DiskMetrics{Path: "/"},
			})
		}))
		defer srv.Close()

		snap, err := FetchMetrics(context.Background(), srv.Client(), srv.URL+"/metrics")
		require.NoError(t, err)
		assert.Equal(t, 8, snap.CPU.CoreCount)
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to fetch metrics"}`))
		}))
		defer srv.Close()

		_, err := FetchMetrics(context.Background(), srv.Client(), srv.URL)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := FetchMetrics(context.Background(), srv.Client(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})
}
