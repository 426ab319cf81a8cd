// Package fleetstatus reports the health, location and operating metrics of
// a fixed fleet of remote hosts.
//
// # Overview
//
// A central status server checks every host on a fixed interval and serves
// the latest completed result from memory. API requests never wait for a
// live probe.
//
// The system consists of two processes:
//   - Status server: refresh scheduler, per-host probe pipeline, snapshot cache and Echo API
//   - Metrics agent: runs on each monitored host and serves a normalized metrics snapshot
//
// # Architecture
//
//	┌──────────────────┐        ┌──────────────────┐
//	│  Dashboard / CLI │        │  Metrics Agent   │ (one per host)
//	└────────┬─────────┘        │  GET /metrics    │
//	         │                  └────────▲─────────┘
//	┌────────▼─────────┐                 │
//	│  Status API      │        ┌────────┴─────────┐
//	│  (Echo REST/WS)  │        │  Probe Pipeline  │ ping + geo + agent fetch
//	└────────┬─────────┘        └────────▲─────────┘
//	         │ read                      │ fan out
//	┌────────▼─────────┐ publish ┌───────┴──────────┐
//	│  Snapshot Cache  ◄─────────┤  Scheduler       │
//	└──────────────────┘         └──────────────────┘
//
// Each refresh cycle probes all hosts concurrently. A host's location is
// looked up while its reachability is checked; its metrics are fetched only
// once it answered. The cycle publishes one complete snapshot, so readers
// see either the previous cycle or the new one, never a mix. At most one
// cycle runs at a time; a tick that finds a cycle in flight is skipped.
//
// # Usage
//
// Start the status server:
//
//	fleetstatus server --config config.yaml
//
// Run the metrics agent on a monitored host:
//
//	fleetstatus agent --listen 0.0.0.0:9101
//
// Show what the server currently reports:
//
//	fleetstatus status --url http://localhost:3000
//
// # Fleet File
//
// The monitored hosts are listed in a JSON or YAML file (fleet.file):
//
//	{
//	  "servers": [
//	    {"name": "fra-1", "ip": "203.0.113.10", "agentUrl": "http://203.0.113.10:9101/metrics"},
//	    {"name": "ams-1", "ip": "198.51.100.7"}
//	  ]
//	}
//
// The file is read once at startup. A missing or malformed file yields an
// empty fleet; invalid entries are skipped with a warning.
//
// # API Endpoints
//
//   - GET /api/vps-status       - Status records of all hosts (dashboard path)
//   - GET /api/v1/status        - Same as above
//   - GET /api/v1/status/:name  - Status record of one host
//   - GET /api/v1/snapshot      - Current snapshot with cycle id and completion time
//   - GET /api/v1/ws/status     - WebSocket stream of published snapshots
//   - GET /config.json          - Dashboard runtime configuration
//   - GET /health               - Server health
//   - GET /metrics              - Prometheus metrics of the server itself
//   - GET /docs/*               - Swagger UI
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (FS_ prefix)
//   - .env file
//
// Run "fleetstatus config init" for a commented default file.
package fleetstatus
