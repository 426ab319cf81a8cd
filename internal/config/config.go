// Package config provides configuration management for fleetstatus.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with FS_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.fleetstatus/config.yaml, /etc/fleetstatus/config.yaml)
//  3. .env files
//  4. Environment variables (FS_ prefix)
//
// The fleet itself (the list of monitored hosts) lives in a separate file,
// see LoadFleet.
//
// # Environment Variables
//
// Use FS_ prefix and underscores for nested keys:
//   - FS_SERVER_PORT=3000
//   - FS_FLEET_REFRESH_INTERVAL=1m
//   - FS_GEOIP_DATABASE=/var/lib/GeoIP/GeoLite2-City.mmdb
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for fleetstatus.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Fleet contains refresh cycle and probe settings
	Fleet FleetConfig `mapstructure:"fleet" yaml:"fleet"`

	// GeoIP contains location lookup settings
	GeoIP GeoIPConfig `mapstructure:"geoip" yaml:"geoip"`

	// Agent contains the metrics agent listener settings
	Agent AgentConfig `mapstructure:"agent" yaml:"agent"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Security contains CORS and rate limiting settings
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Frontend is served to the dashboard as /config.json
	Frontend FrontendConfig `mapstructure:"frontend" yaml:"frontend"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the server listen port (default: 3000)
	Port int `mapstructure:"port" yaml:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Debug enables debug logging and the API documentation routes
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// FleetConfig controls refresh cycles.
type FleetConfig struct {
	// File is the path of the fleet file (JSON or YAML)
	File string `mapstructure:"file" yaml:"file"`

	// RefreshInterval is the time between refresh cycles (default: 5m)
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`

	// ProbeMode selects the reachability check: icmp or tcp
	ProbeMode string `mapstructure:"probe_mode" yaml:"probe_mode"`

	// ProbeTimeout bounds one reachability check (default: 2s)
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`

	// ProbePort is the port dialed in tcp mode
	ProbePort int `mapstructure:"probe_port" yaml:"probe_port"`

	// Privileged uses raw ICMP sockets instead of unprivileged UDP ping
	Privileged bool `mapstructure:"privileged" yaml:"privileged"`

	// AgentTimeout bounds one metrics agent request (default: 5s)
	AgentTimeout time.Duration `mapstructure:"agent_timeout" yaml:"agent_timeout"`
}

// GeoIPConfig contains location lookup settings.
type GeoIPConfig struct {
	// Database is the path of a GeoLite2 City database; lookups are disabled when it is missing
	Database string `mapstructure:"database" yaml:"database"`
}

// AgentConfig contains the metrics agent listener settings.
type AgentConfig struct {
	// Host is the agent bind address
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the agent listen port (default: 9101)
	Port int `mapstructure:"port" yaml:"port"`

	// Path is the route serving metrics snapshots
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client, 0 disables limiting
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins; takes precedence over PrimaryFrontendDomain
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// PrimaryFrontendDomain is the dashboard domain, allowed as https://<domain>
	PrimaryFrontendDomain string `mapstructure:"primary_frontend_domain" yaml:"primary_frontend_domain"`

	// Environment is "production" or anything else; outside production the local dev origin is allowed
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// FrontendConfig is the runtime configuration handed to the dashboard.
type FrontendConfig struct {
	// APIURL is where the dashboard fetches status from
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// RefreshInterval is how often the dashboard polls
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FS_ prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.fleetstatus")
		v.AddConfigPath("/etc/fleetstatus")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			// An explicit but missing file falls back to defaults
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("FS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment names understood by earlier deployments of the dashboard
	_ = v.BindEnv("security.allowed_origins", "FS_SECURITY_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("security.primary_frontend_domain", "FS_SECURITY_PRIMARY_FRONTEND_DOMAIN", "PRIMARY_FRONTEND_DOMAIN")
	_ = v.BindEnv("security.environment", "FS_SECURITY_ENVIRONMENT", "NODE_ENV")
	_ = v.BindEnv("server.port", "FS_SERVER_PORT", "PORT")

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	loaded.Security.AllowedOrigins = splitOrigins(loaded.Security.AllowedOrigins)

	if err := validate(loaded); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.debug", d.Server.Debug)

	v.SetDefault("fleet.file", d.Fleet.File)
	v.SetDefault("fleet.refresh_interval", d.Fleet.RefreshInterval)
	v.SetDefault("fleet.probe_mode", d.Fleet.ProbeMode)
	v.SetDefault("fleet.probe_timeout", d.Fleet.ProbeTimeout)
	v.SetDefault("fleet.probe_port", d.Fleet.ProbePort)
	v.SetDefault("fleet.privileged", d.Fleet.Privileged)
	v.SetDefault("fleet.agent_timeout", d.Fleet.AgentTimeout)

	v.SetDefault("geoip.database", d.GeoIP.Database)

	v.SetDefault("agent.host", d.Agent.Host)
	v.SetDefault("agent.port", d.Agent.Port)
	v.SetDefault("agent.path", d.Agent.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("security.rate_limit", d.Security.RateLimit)
	v.SetDefault("security.allowed_origins", d.Security.AllowedOrigins)
	v.SetDefault("security.primary_frontend_domain", d.Security.PrimaryFrontendDomain)
	v.SetDefault("security.environment", d.Security.Environment)

	v.SetDefault("frontend.api_url", d.Frontend.APIURL)
	v.SetDefault("frontend.refresh_interval", d.Frontend.RefreshInterval)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Fleet: FleetConfig{
			File:            "./config.json",
			RefreshInterval: 5 * time.Minute,
			ProbeMode:       "icmp",
			ProbeTimeout:    2 * time.Second,
			ProbePort:       22,
			AgentTimeout:    5 * time.Second,
		},
		GeoIP: GeoIPConfig{
			Database: "./GeoLite2-City.mmdb",
		},
		Agent: AgentConfig{
			Host: "0.0.0.0",
			Port: 9101,
			Path: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Security: SecurityConfig{
			RateLimit:      20,
			AllowedOrigins: []string{},
			Environment:    "development",
		},
		Frontend: FrontendConfig{
			APIURL:          "/api/vps-status",
			RefreshInterval: 30 * time.Second,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Agent.Port < 1 || cfg.Agent.Port > 65535 {
		return fmt.Errorf("invalid agent port: %d", cfg.Agent.Port)
	}

	if !strings.HasPrefix(cfg.Agent.Path, "/") {
		return fmt.Errorf("agent path must start with /: %q", cfg.Agent.Path)
	}

	if cfg.Fleet.RefreshInterval <= 0 {
		return fmt.Errorf("fleet refresh interval must be positive")
	}

	if cfg.Fleet.ProbeTimeout <= 0 {
		return fmt.Errorf("fleet probe timeout must be positive")
	}

	if cfg.Fleet.AgentTimeout <= cfg.Fleet.ProbeTimeout {
		return fmt.Errorf("fleet agent timeout (%s) must be longer than probe timeout (%s)",
			cfg.Fleet.AgentTimeout, cfg.Fleet.ProbeTimeout)
	}

	switch strings.ToLower(cfg.Fleet.ProbeMode) {
	case "icmp":
	case "tcp":
		if cfg.Fleet.ProbePort < 1 || cfg.Fleet.ProbePort > 65535 {
			return fmt.Errorf("invalid fleet probe port: %d", cfg.Fleet.ProbePort)
		}
	default:
		return fmt.Errorf("unknown fleet probe mode: %q", cfg.Fleet.ProbeMode)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown logging format: %q", cfg.Logging.Format)
	}

	if cfg.Security.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	return nil
}

func Get() *Config {
	return cfg
}

// IsProduction reports whether the server runs in production mode.
func (s SecurityConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// Addr returns the listen address of the status server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Addr returns the listen address of the metrics agent.
func (a AgentConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// splitOrigins accepts both list values and a single comma separated string
// as delivered through the environment.
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
