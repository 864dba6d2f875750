// Package http provides the local API server and its middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	fitnessHTTP "github.com/fitsync/fitsync/internal/fitness/http"
	syncHTTP "github.com/fitsync/fitsync/internal/sync/http"
)

// Server represents the local API server. It fronts the record store and
// the sync queue for on-device clients.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// RouterConfig carries the handlers and middleware settings for the API router.
type RouterConfig struct {
	RecordHandler     *fitnessHTTP.RecordHandler
	SyncHandler       *syncHTTP.SyncHandler
	MetricsMiddleware gin.HandlerFunc
	RateLimitRPS      float64
	RateLimitBurst    int
	CORSEnabled       bool
	CORSAllowOrigins  string
}

// NewServer creates a new API server. The database handle is used by the
// readiness probe only.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the API router and registers all routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitRPS > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	if cfg.RecordHandler != nil {
		records := v1.Group("/records")
		records.POST("", cfg.RecordHandler.CreateHandler)
		records.GET("", cfg.RecordHandler.ListHandler)
		records.GET("/:id", cfg.RecordHandler.GetHandler)
		records.PUT("/:id", cfg.RecordHandler.UpdateHandler)
		records.DELETE("/:id", cfg.RecordHandler.DeleteHandler)
	}

	if cfg.SyncHandler != nil {
		syncGroup := v1.Group("/sync")
		syncGroup.POST("/events", cfg.SyncHandler.EnqueueHandler)
		syncGroup.GET("/events/failed", cfg.SyncHandler.ListFailedHandler)
		syncGroup.GET("/events/stale", cfg.SyncHandler.ListStaleHandler)
		syncGroup.POST("/trigger", cfg.SyncHandler.TriggerHandler)
	}

	s.router = router
}

// Start starts the API server. SetupRouter must have been called first;
// otherwise only the health endpoints are served.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.SetupRouter(RouterConfig{})
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its database.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	ready := true
	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(pingCtx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
