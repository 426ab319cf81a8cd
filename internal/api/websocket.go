package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func (s *Server) newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return originAllowed(s.origins, origin) || sameHost(origin, r.Host)
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// handleStatusStream godoc
// @Summary Stream fleet snapshots
// @Description Upgrades to a WebSocket. The current snapshot is sent immediately, then every newly published snapshot.
// @Tags status
// @Success 101 {object} StatusEvent
// @Router /api/v1/ws/status [get]
func (s *Server) handleStatusStream(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response
		s.logger.Debug("websocket upgrade failed", "error", err)
		return nil
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	if message, err := encodeSnapshotEvent(s.cache.Read()); err == nil {
		client.send <- message
	}

	if !s.hub.Register(client) {
		_ = conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return nil
}
