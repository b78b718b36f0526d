// Package server exposes the deduplication pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/soundprediction/dedupe/pkg/server/handlers"
	"github.com/soundprediction/dedupe/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	client *dedupe.Client
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client *dedupe.Client) *Server {
	return &Server{
		config: cfg,
		client: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(actorMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.client.GetDriver(), s.config.Dedup.GroupID)
	dedupeHandler := handlers.NewDedupeHandler(s.client, nil)
	mergeHandler := handlers.NewMergeHandler(s.client, nil)
	backfillHandler := handlers.NewBackfillHandler(s.client, nil)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/deduplicate", dedupeHandler.Deduplicate)
		v1.POST("/merge", mergeHandler.Merge)
		v1.POST("/embeddings/backfill", backfillHandler.Backfill)
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-Email")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// actorMiddleware records who is performing the request. Merges stamp the
// actor on transferred relationships.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-User-Email")
		if actor == "" {
			actor = "system"
		}
		c.Set("actor", actor)

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.ContextKeyActor, actor)
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "api")
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
