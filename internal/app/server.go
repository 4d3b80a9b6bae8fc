// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepwise_backend/internal/auth"
	"prepwise_backend/internal/config"
	"prepwise_backend/internal/jobs"
	"prepwise_backend/internal/middleware"
	"prepwise_backend/internal/session"
	"prepwise_backend/internal/user"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	authHandler *auth.Handler
	userHandler *user.Handler

	// Jobs
	auditRetentionJob *jobs.AuditRetentionJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	sessions *session.Manager,
	cookies *session.Cookies,
	auditRetentionJob *jobs.AuditRetentionJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware. Credentials are allowed because the session travels
	// in a cookie.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	sessionMW := middleware.SessionAuth(sessions, cookies, logger.Named("SessionAuth"))
	optionalSessionMW := middleware.OptionalSessionAuth(sessions, cookies)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Prepwise API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, optionalSessionMW)
	userHandler.RegisterRoutes(v1, sessionMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:        httpServer,
		router:            router,
		cfg:               cfg,
		logger:            logger,
		authHandler:       authHandler,
		userHandler:       userHandler,
		auditRetentionJob: auditRetentionJob,
	}, nil
}

// Start launches the background jobs and the HTTP listener. Blocks until
// the listener stops.
func (s *Server) Start() error {
	if s.auditRetentionJob != nil {
		if err := s.auditRetentionJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start audit retention job", zap.Error(err))
		}
	} else {
		s.logger.Info("Audit retention job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

// Shutdown stops the background jobs and drains the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.auditRetentionJob != nil {
		s.auditRetentionJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
