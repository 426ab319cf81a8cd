package models

// HostConfig is one monitored host as declared in the fleet file.
//
// The fleet file keeps the format used by the dashboard deployments:
//
//	{
//	  "servers": [
//	    {"name": "fra-1", "ip": "203.0.113.10", "agentUrl": "http://203.0.113.10:9101/metrics"},
//	    {"name": "ams-2", "ip": "ams2.example.net"}
//	  ]
//	}
//
// Name must be unique within the fleet. MetricsEndpoint is optional; hosts
// without one are probed for reachability and location only.
type HostConfig struct {
	// Name is the display name reported in every status record
	Name string `json:"name" yaml:"name" validate:"required"`

	// Address is the IP address or hostname used for reachability and geo lookup
	Address string `json:"ip" yaml:"ip" validate:"required,ip|hostname_rfc1123"`

	// MetricsEndpoint is the full URL of the host's metrics agent, if any
	MetricsEndpoint string `json:"agentUrl,omitempty" yaml:"agentUrl,omitempty" validate:"omitempty,url"`
}

// HasAgent reports whether a metrics endpoint is configured for the host.
func (h HostConfig) HasAgent() bool {
	return h.MetricsEndpoint != ""
}

// FleetFile is the top-level document of a fleet configuration file.
type FleetFile struct {
	Servers []HostConfig `json:"servers" yaml:"servers"`
}
