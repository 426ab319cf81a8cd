package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"evalgo.org/fleetstatus/internal/validation"
	"evalgo.org/fleetstatus/models"
)

// ParseFleet decodes a fleet document. YAML is used for .yaml/.yml paths,
// JSON otherwise.
func ParseFleet(path string, data []byte) (*models.FleetFile, error) {
	var fleet models.FleetFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fleet); err != nil {
			return nil, fmt.Errorf("parse fleet yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &fleet); err != nil {
			return nil, fmt.Errorf("parse fleet json: %w", err)
		}
	}
	return &fleet, nil
}

// LoadFleet reads and validates the fleet file at path. Invalid or duplicate
// entries are dropped and reported through the returned warnings; only an
// unreadable or undecodable file is an error.
func LoadFleet(path string) ([]models.HostConfig, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fleet file: %w", err)
	}

	fleet, err := ParseFleet(path, data)
	if err != nil {
		return nil, nil, err
	}

	v := validation.New()
	hosts := make([]models.HostConfig, 0, len(fleet.Servers))
	seen := make(map[string]bool, len(fleet.Servers))
	var warnings []string

	for i, h := range fleet.Servers {
		h.Name = strings.TrimSpace(h.Name)
		h.Address = strings.TrimSpace(h.Address)
		h.MetricsEndpoint = strings.TrimSpace(h.MetricsEndpoint)

		if result := v.ValidateHost(h); !result.Valid {
			warnings = append(warnings, fmt.Sprintf("servers[%d] %q skipped: %s", i, h.Name, result))
			continue
		}
		if seen[h.Name] {
			warnings = append(warnings, fmt.Sprintf("servers[%d] %q skipped: duplicate name", i, h.Name))
			continue
		}
		seen[h.Name] = true
		hosts = append(hosts, h)
	}

	return hosts, warnings, nil
}

// FleetSource serves the host list read once at startup. The fleet does not
// change while the process runs.
type FleetSource struct {
	hosts []models.HostConfig
}

// NewFleetSource loads the fleet file. A missing or malformed file is logged
// once and yields an empty fleet; the server keeps running and publishes
// empty snapshots.
func NewFleetSource(path string, logger *slog.Logger) *FleetSource {
	if logger == nil {
		logger = slog.Default()
	}

	hosts, warnings, err := LoadFleet(path)
	if err != nil {
		logger.Error("fleet file unusable, monitoring no hosts", "path", path, "error", err)
		return &FleetSource{hosts: []models.HostConfig{}}
	}
	for _, w := range warnings {
		logger.Warn("invalid fleet entry", "path", path, "detail", w)
	}
	if len(hosts) == 0 {
		logger.Warn("fleet file lists no hosts", "path", path)
	} else {
		logger.Info("fleet loaded", "path", path, "hosts", len(hosts))
	}
	return &FleetSource{hosts: hosts}
}

// NewStaticFleet serves a fixed host list.
func NewStaticFleet(hosts []models.HostConfig) *FleetSource {
	return &FleetSource{hosts: append([]models.HostConfig(nil), hosts...)}
}

// Hosts returns a copy of the host list.
func (f *FleetSource) Hosts(ctx context.Context) ([]models.HostConfig, error) {
	return append([]models.HostConfig(nil), f.hosts...), nil
}

// Len returns the number of hosts.
func (f *FleetSource) Len() int {
	return len(f.hosts)
}
