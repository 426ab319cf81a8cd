package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Marker texts carried by MetricsResult.
const (
	// AgentNotConfiguredInfo is reported for online hosts without a metrics endpoint.
	AgentNotConfiguredInfo = "Agent not configured for this server."
)

// CPUMetrics describes processor state on a host.
type CPUMetrics struct {
	// CoreCount is the number of logical cores
	CoreCount int `json:"count"`

	// UsagePercent is the current total CPU load, 0-100 with two decimals
	UsagePercent float64 `json:"usagePercent"`

	// LoadAverage holds the 1, 5 and 15 minute load averages
	LoadAverage [3]float64 `json:"loadAverage"`
}

// MemoryMetrics is used for both physical memory and swap.
type MemoryMetrics struct {
	TotalBytes   uint64  `json:"totalBytes"`
	UsedBytes    uint64  `json:"usedBytes"`
	UsagePercent float64 `json:"usagePercent"`
}

// DiskMetrics describes the root filesystem.
type DiskMetrics struct {
	// Path is the mount point, or "N/A" when the root filesystem is not found
	Path         string  `json:"path"`
	TotalBytes   uint64  `json:"totalBytes"`
	UsedBytes    uint64  `json:"usedBytes"`
	UsagePercent float64 `json:"usagePercent"`
}

// NetworkMetrics describes throughput on the default outbound interface.
type NetworkMetrics struct {
	// InterfaceName is the default interface, or "N/A" when it cannot be determined
	InterfaceName string `json:"interface"`

	// RxBytesPerSec is the receive rate in whole bytes per second
	RxBytesPerSec uint64 `json:"rxSpeedBps"`

	// TxBytesPerSec is the transmit rate in whole bytes per second
	TxBytesPerSec uint64 `json:"txSpeedBps"`
}

// SystemMetrics holds host-wide values.
type SystemMetrics struct {
	UptimeSeconds uint64 `json:"uptimeSeconds"`
}

// MetricsSnapshot is one normalized sample produced by a host's metrics agent.
// Every field is always present; values that could not be measured are zero.
//
// Example JSON representation:
//
//	{
//	  "cpu": {"count": 4, "usagePercent": 12.5, "loadAverage": [0.31, 0.22, 0.18]},
//	  "memory": {"totalBytes": 8254316544, "usedBytes": 2147483648, "usagePercent": 26.02},
//	  "swap": {"totalBytes": 0, "usedBytes": 0, "usagePercent": 0},
//	  "disk": {"path": "/", "totalBytes": 85899345920, "usedBytes": 21474836480, "usagePercent": 25},
//	  "network": {"interface": "eth0", "rxSpeedBps": 10240, "txSpeedBps": 2048},
//	  "system": {"uptimeSeconds": 86400},
//	  "timestamp": "2024-05-01T12:00:00Z"
//	}
type MetricsSnapshot struct {
	CPU        CPUMetrics     `json:"cpu"`
	Memory     MemoryMetrics  `json:"memory"`
	Swap       MemoryMetrics  `json:"swap"`
	Disk       DiskMetrics    `json:"disk"`
	Network    NetworkMetrics `json:"network"`
	System     SystemMetrics  `json:"system"`
	CapturedAt time.Time      `json:"timestamp"`
}

// MetricsResult is the metrics outcome for one host in one cycle. Exactly
// one of Snapshot, Info or Error is set.
//
// On the wire a result is either a full MetricsSnapshot object, an
// {"info": "..."} marker or an {"error": "..."} marker. A nil *MetricsResult
// (host offline) renders as null.
type MetricsResult struct {
	Snapshot *MetricsSnapshot
	Info     string
	Error    string
}

// MetricsOK wraps a successfully fetched snapshot.
func MetricsOK(s *MetricsSnapshot) *MetricsResult {
	return &MetricsResult{Snapshot: s}
}

// MetricsNotConfigured is the marker for hosts without a metrics endpoint.
func MetricsNotConfigured() *MetricsResult {
	return &MetricsResult{Info: AgentNotConfiguredInfo}
}

// MetricsStatusError is the marker for an agent answering with a non-success status.
func MetricsStatusError(code int) *MetricsResult {
	return &MetricsResult{Error: fmt.Sprintf("Agent request failed: Status %d", code)}
}

// MetricsFetchError is the marker for a transport, timeout or decode failure.
func MetricsFetchError(err error) *MetricsResult {
	return &MetricsResult{Error: fmt.Sprintf("Agent fetch error: %v", err)}
}

// IsError reports whether the result carries an error marker.
func (r *MetricsResult) IsError() bool {
	return r != nil && r.Snapshot == nil && r.Error != ""
}

type infoMarker struct {
	Info string `json:"info"`
}

type errorMarker struct {
	Error string `json:"error"`
}

// MarshalJSON renders the populated variant.
func (r MetricsResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.Snapshot != nil:
		return json.Marshal(r.Snapshot)
	case r.Error != "":
		return json.Marshal(errorMarker{Error: r.Error})
	case r.Info != "":
		return json.Marshal(infoMarker{Info: r.Info})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON detects the variant from the keys present.
func (r *MetricsResult) UnmarshalJSON(data []byte) error {
	*r = MetricsResult{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode metrics result: %w", err)
	}

	if raw, ok := probe["error"]; ok {
		return json.Unmarshal(raw, &r.Error)
	}
	if raw, ok := probe["info"]; ok {
		return json.Unmarshal(raw, &r.Info)
	}

	var snap MetricsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode metrics snapshot: %w", err)
	}
	r.Snapshot = &snap
	return nil
}
