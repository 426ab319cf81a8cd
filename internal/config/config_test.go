package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.Debug)

	assert.Equal(t, "./config.json", cfg.Fleet.File)
	assert.Equal(t, 5*time.Minute, cfg.Fleet.RefreshInterval)
	assert.Equal(t, "icmp", cfg.Fleet.ProbeMode)
	assert.Equal(t, 2*time.Second, cfg.Fleet.ProbeTimeout)
	assert.Equal(t, 5*time.Second, cfg.Fleet.AgentTimeout)
	assert.Equal(t, 22, cfg.Fleet.ProbePort)

	assert.Equal(t, "./GeoLite2-City.mmdb", cfg.GeoIP.Database)

	assert.Equal(t, 9101, cfg.Agent.Port)
	assert.Equal(t, "/metrics", cfg.Agent.Path)
	assert.Equal(t, "0.0.0.0:9101", cfg.Agent.Addr())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.False(t, cfg.Security.IsProduction())
	assert.Empty(t, cfg.Security.AllowedOrigins)

	assert.Equal(t, "/api/vps-status", cfg.Frontend.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Frontend.RefreshInterval)
}

// TestLoadFile tests that values from a YAML file override defaults.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
fleet:
  file: /etc/fleetstatus/fleet.yaml
  refresh_interval: 1m
  probe_mode: tcp
  probe_port: 443
security:
  environment: production
  allowed_origins:
    - https://status.example.net
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/etc/fleetstatus/fleet.yaml", cfg.Fleet.File)
	assert.Equal(t, time.Minute, cfg.Fleet.RefreshInterval)
	assert.Equal(t, "tcp", cfg.Fleet.ProbeMode)
	assert.Equal(t, 443, cfg.Fleet.ProbePort)
	assert.True(t, cfg.Security.IsProduction())
	assert.Equal(t, []string{"https://status.example.net"}, cfg.Security.AllowedOrigins)
	// untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, cfg.Fleet.ProbeTimeout)
}

// TestLoadMalformedFile tests that a broken config file is an error.
func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid configuration", func(c *Config) {}, ""},
		{"invalid port - too low", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"invalid agent port", func(c *Config) { c.Agent.Port = -1 }, "invalid agent port"},
		{"relative agent path", func(c *Config) { c.Agent.Path = "metrics" }, "agent path"},
		{"zero refresh interval", func(c *Config) { c.Fleet.RefreshInterval = 0 }, "refresh interval"},
		{"zero probe timeout", func(c *Config) { c.Fleet.ProbeTimeout = 0 }, "probe timeout"},
		{"agent timeout not above probe timeout", func(c *Config) { c.Fleet.AgentTimeout = 2 * time.Second }, "agent timeout"},
		{"unknown probe mode", func(c *Config) { c.Fleet.ProbeMode = "arp" }, "probe mode"},
		{"tcp mode bad port", func(c *Config) { c.Fleet.ProbeMode = "tcp"; c.Fleet.ProbePort = 0 }, "probe port"},
		{"icmp mode ignores port", func(c *Config) { c.Fleet.ProbePort = 0 }, ""},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
		{"negative rate limit", func(c *Config) { c.Security.RateLimit = -1 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := validate(c)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("FS_SERVER_PORT", "9999")
	t.Setenv("FS_SERVER_HOST", "127.0.0.1")
	t.Setenv("FS_FLEET_REFRESH_INTERVAL", "90s")
	t.Setenv("FS_GEOIP_DATABASE", "/var/lib/GeoIP/GeoLite2-City.mmdb")

	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr())
	assert.Equal(t, 90*time.Second, cfg.Fleet.RefreshInterval)
	assert.Equal(t, "/var/lib/GeoIP/GeoLite2-City.mmdb", cfg.GeoIP.Database)
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	retrieved := Get()
	require.NotNil(t, retrieved)
	assert.Equal(t, 3000, retrieved.Server.Port)
}

// TestLegacyEnvironmentNames tests the CORS variables read by older dashboard deployments.
func TestLegacyEnvironmentNames(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("PRIMARY_FRONTEND_DOMAIN", "status.example.com")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "status.example.com", cfg.Security.PrimaryFrontendDomain)
	assert.True(t, cfg.Security.IsProduction())
}
