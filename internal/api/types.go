package api

import (
	"time"

	"evalgo.org/fleetstatus/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string     `json:"status"`
	Service     string     `json:"service"`
	Version     string     `json:"version"`
	SnapshotID  string     `json:"snapshotId,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Hosts       int        `json:"hosts"`
	Online      int        `json:"online"`
	GeoEnabled  bool       `json:"geoEnabled"`
	WSClients   int        `json:"wsClients"`
	Time        time.Time  `json:"time"`
}

// FrontendConfigResponse is the dashboard runtime configuration served as /config.json.
type FrontendConfigResponse struct {
	APIURL string `json:"apiUrl"`

	// RefreshInterval is in milliseconds
	RefreshInterval int64 `json:"refreshInterval"`
}

// StatusEventType names the kind of websocket message.
type StatusEventType string

const (
	// EventSnapshot carries a complete fleet snapshot
	EventSnapshot StatusEventType = "snapshot"
)

// StatusEvent is one websocket message.
type StatusEvent struct {
	Type      StatusEventType      `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Data      models.FleetSnapshot `json:"data"`
}
