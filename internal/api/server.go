// Package api provides the HTTP API server for fleetstatus.
// It uses the Echo framework to serve the cached fleet status, a WebSocket
// stream of published snapshots and the server's own Prometheus metrics.
// Handlers only ever read from the snapshot cache; they never trigger probes.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "evalgo.org/fleetstatus/docs" // Register API docs
	"evalgo.org/fleetstatus/internal/config"
	"evalgo.org/fleetstatus/internal/snapshot"
	"evalgo.org/fleetstatus/models"
)

// Server represents the fleetstatus API server.
type Server struct {
	echo     *echo.Echo
	cache    *snapshot.Cache
	config   *config.Config
	hub      *Hub
	upgrader websocket.Upgrader
	origins  []string
	logger   *slog.Logger

	metrics    http.Handler
	geoEnabled bool

	stopHub context.CancelFunc
}

// Option customizes a Server.
type Option func(*Server)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithGeoEnabled reports geo lookup availability on /health.
func WithGeoEnabled(enabled bool) Option {
	return func(s *Server) {
		s.geoEnabled = enabled
	}
}

// New creates a new API server instance serving from cache.
func New(cfg *config.Config, cache *snapshot.Cache, logger *slog.Logger, opts ...Option) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	hubCtx, stopHub := context.WithCancel(context.Background())

	server := &Server{
		echo:    e,
		cache:   cache,
		config:  cfg,
		hub:     NewHub(logger),
		origins: ResolveAllowedOrigins(cfg.Security),
		logger:  logger,
		stopHub: stopHub,
	}
	for _, opt := range opts {
		opt(server)
	}
	server.upgrader = server.newUpgrader()

	go server.hub.Run(hubCtx)

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestID())
	s.echo.Use(RequestLogger(s.logger))
	s.echo.Use(middleware.Recover())
	s.echo.Use(SecurityHeaders)
	s.echo.Use(corsMiddleware(s.origins))

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/config.json", s.frontendConfig)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	// Path used by the existing dashboard; always answers with JSON
	s.echo.GET("/api/vps-status", s.listStatus)

	v1 := s.echo.Group("/api/v1", ValidateAcceptHeader)
	v1.GET("/status", s.listStatus)
	v1.GET("/status/:name", s.getHostStatus)
	v1.GET("/snapshot", s.getSnapshot)

	s.echo.GET("/api/v1/ws/status", s.handleStatusStream)
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	s.logger.Info("starting status API server",
		"addr", addr,
		"origins", s.origins,
		"debug", s.config.Server.Debug,
	)

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status API server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status API server")
	s.stopHub()

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

// BroadcastSnapshot pushes a published snapshot to stream clients. It is
// meant to be registered as a scheduler publish hook.
func (s *Server) BroadcastSnapshot(snap models.FleetSnapshot) {
	s.hub.BroadcastSnapshot(snap)
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// AllowedOrigins returns the resolved CORS origins.
func (s *Server) AllowedOrigins() []string {
	return s.origins
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
