package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"evalgo.org/fleetstatus/internal/version"
)

// listStatus godoc
// @Summary Get fleet status
// @Description Returns the status record of every host from the most recent completed refresh cycle. Never waits for a probe; returns an empty array before the first cycle completes.
// @Tags status
// @Produce json
// @Success 200 {array} models.HostStatusRecord
// @Router /api/vps-status [get]
// @Router /api/v1/status [get]
func (s *Server) listStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cache.Records())
}

// getHostStatus godoc
// @Summary Get host status
// @Description Returns the status record of a single host by name
// @Tags status
// @Produce json
// @Param name path string true "Host name"
// @Success 200 {object} models.HostStatusRecord
// @Failure 404 {object} APIError
// @Router /api/v1/status/{name} [get]
func (s *Server) getHostStatus(c echo.Context) error {
	name := c.Param("name")

	for _, rec := range s.cache.Records() {
		if rec.Name == name {
			return c.JSON(http.StatusOK, rec)
		}
	}
	return NotFoundError("Host", name)
}

// getSnapshot godoc
// @Summary Get current snapshot
// @Description Returns the most recent snapshot including its cycle id and completion time
// @Tags status
// @Produce json
// @Success 200 {object} models.FleetSnapshot
// @Router /api/v1/snapshot [get]
func (s *Server) getSnapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cache.Read())
}

// healthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	snap := s.cache.Read()

	resp := HealthResponse{
		Status:     "healthy",
		Service:    "fleetstatus",
		Version:    version.Version,
		SnapshotID: snap.ID,
		Hosts:      len(snap.Records),
		Online:     snap.OnlineCount(),
		GeoEnabled: s.geoEnabled,
		WSClients:  s.hub.ClientCount(),
		Time:       time.Now().UTC(),
	}
	if !snap.CompletedAt.IsZero() {
		completed := snap.CompletedAt
		resp.CompletedAt = &completed
	}

	return c.JSON(http.StatusOK, resp)
}

// frontendConfig godoc
// @Summary Dashboard runtime configuration
// @Tags system
// @Produce json
// @Success 200 {object} FrontendConfigResponse
// @Router /config.json [get]
func (s *Server) frontendConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, FrontendConfigResponse{
		APIURL:          s.config.Frontend.APIURL,
		RefreshInterval: s.config.Frontend.RefreshInterval.Milliseconds(),
	})
}
