package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/internal/config"
	"evalgo.org/fleetstatus/internal/probe"
	"evalgo.org/fleetstatus/models"
)

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfigFile), 0644))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)
}

func TestPrintStatusTable(t *testing.T) {
	records := []models.HostStatusRecord{
		{
			Name:     "fra-1",
			IsOnline: true,
			Location: models.NewGeoInfo("Frankfurt am Main", "DE"),
			Metrics: models.MetricsOK(&models.MetricsSnapshot{
				CPU:    models.CPUMetrics{UsagePercent: 12.5},
				Memory: models.MemoryMetrics{UsagePercent: 40},
				Disk:   models.DiskMetrics{Path: "/", UsagePercent: 71.25},
			}),
		},
		{
			Name:     "ams-1",
			IsOnline: true,
			Location: models.UnknownLocation(),
			Metrics:  models.MetricsStatusError(503),
		},
		{
			Name:     "nyc-1",
			Location: models.UnknownLocation(),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printStatusTable(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))

	assert.Contains(t, lines[1], "fra-1")
	assert.Contains(t, lines[1], "🇩🇪 Frankfurt am Main, DE")
	assert.Contains(t, lines[1], "12.5%")
	assert.Contains(t, lines[1], "71.2%")

	assert.Contains(t, lines[2], "Agent request failed: Status 503")
	assert.Contains(t, lines[2], "Unknown, N/A")

	assert.Contains(t, lines[3], "nyc-1")
	assert.Contains(t, lines[3], "no")
}

type stubProber struct {
	err     error
	targets []string
}

func (s *stubProber) Probe(ctx context.Context, address string) error {
	s.targets = append(s.targets, address)
	return s.err
}

func TestCheckProber(t *testing.T) {
	denied := &probe.Error{
		Address: probe.LoopbackAddress,
		Reason:  probe.FailUnknown,
		Cause:   errors.New("socket: permission denied"),
	}

	tests := []struct {
		name     string
		err      error
		fleet    config.FleetConfig
		wantOK   bool
		wantHint string
	}{
		{
			name:   "working prober stays quiet",
			fleet:  config.FleetConfig{ProbeMode: probe.ModeICMP},
			wantOK: true,
		},
		{
			name:     "unprivileged icmp denied",
			err:      denied,
			fleet:    config.FleetConfig{ProbeMode: probe.ModeICMP},
			wantHint: "fleet.privileged=true",
		},
		{
			name:     "privileged icmp denied",
			err:      denied,
			fleet:    config.FleetConfig{ProbeMode: probe.ModeICMP, Privileged: true},
			wantHint: "CAP_NET_RAW",
		},
		{
			name:     "tcp failure",
			err:      &probe.Error{Address: probe.LoopbackAddress, Reason: probe.FailTimeout},
			fleet:    config.FleetConfig{ProbeMode: probe.ModeTCP, ProbePort: 22},
			wantHint: "probe port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			prober := &stubProber{err: tt.err}

			ok := checkProber(context.Background(), prober, tt.fleet, logger)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, []string{probe.LoopbackAddress}, prober.targets)
			if tt.wantOK {
				assert.Empty(t, buf.String())
				return
			}
			out := buf.String()
			assert.Equal(t, 1, strings.Count(out, "reachability self-check failed"))
			assert.Contains(t, out, "level=ERROR")
			assert.Contains(t, out, tt.wantHint)
		})
	}
}
