package models

import "time"

// HostStatusRecord is the outcome of probing one host in one cycle.
// Records are never modified after the pipeline returns them.
//
// Example JSON representation:
//
//	{
//	  "name": "fra-1",
//	  "isOnline": true,
//	  "location": {"city": "Frankfurt am Main", "country": "DE", "flag": "🇩🇪"},
//	  "metrics": {"info": "Agent not configured for this server."},
//	  "lastCheck": "2024-05-01T12:00:00Z"
//	}
type HostStatusRecord struct {
	// Name is copied from the host configuration
	Name string `json:"name"`

	// IsOnline is the result of the reachability probe
	IsOnline bool `json:"isOnline"`

	// Location is the resolved geo location, or the unknown placeholder
	Location *GeoInfo `json:"location"`

	// Metrics is nil when the host is offline
	Metrics *MetricsResult `json:"metrics"`

	// LastCheck is when this record was finalised
	LastCheck time.Time `json:"lastCheck"`
}

// FleetSnapshot is the complete result of one scheduler cycle.
type FleetSnapshot struct {
	// ID identifies the cycle that produced the snapshot
	ID string `json:"id"`

	// CompletedAt is when the last host record was joined
	CompletedAt time.Time `json:"completedAt"`

	// Records holds one record per host, in fleet file order
	Records []HostStatusRecord `json:"records"`
}

// EmptySnapshot is served before the first cycle completes.
func EmptySnapshot() FleetSnapshot {
	return FleetSnapshot{Records: []HostStatusRecord{}}
}

// OnlineCount returns the number of reachable hosts in the snapshot.
func (s FleetSnapshot) OnlineCount() int {
	n := 0
	for _, r := range s.Records {
		if r.IsOnline {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no cycle has been published yet.
func (s FleetSnapshot) IsEmpty() bool {
	return s.ID == "" && len(s.Records) == 0
}
