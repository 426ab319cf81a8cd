package agent

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// errorResponse is the body of a failed metrics request.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler returns the agent's HTTP routes.
func (a *Agent) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(a.cfg.Path, a.handleMetrics).Methods(http.MethodGet)
	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	return router
}

// handleMetrics returns one fresh snapshot
func (a *Agent) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Collect(r.Context())
	if err != nil {
		a.logger.Error("metrics collection failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to fetch metrics",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleHealth returns agent health status
func (a *Agent) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":                "healthy",
		"uptime":                time.Since(a.startTime).Seconds(),
		"collections":           a.served.Load(),
		"failedCollections":     a.failed.Load(),
		"lastCollectDurationMs": time.Duration(a.lastCollect.Load()).Milliseconds(),
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
