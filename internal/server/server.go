package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/config"
	"github.com/papervault/archive-service/internal/handler"
	"github.com/papervault/archive-service/internal/middleware"
)

// Server represents the HTTP server for the document archive service.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	logger     *zap.Logger
}

// Handlers bundles the route handlers the server wires up.
type Handlers struct {
	Documents *handler.DocumentHandler
	Scan      *handler.ScanHandler
	Parse     *handler.ParseHandler
	Images    *handler.ImageHandler
}

// NewServer creates and configures a new server instance.
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	router := gin.New()

	// A known path hit with the wrong method answers 405, not 404, matching
	// the parse endpoint's original contract.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(logger))

	server := &Server{
		router: router,
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes(handlers)

	return server
}

// GetRouter returns the gin router instance.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// ServeLocalFiles exposes a directory under /files/ for the local storage
// backend.
func (s *Server) ServeLocalFiles(dir string) {
	s.router.Static("/files", dir)
}

// setupRoutes configures all application routes.
func (s *Server) setupRoutes(handlers Handlers) {
	// Health check endpoint
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API documentation endpoints
	s.router.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	v1 := s.router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(s.config.APIKey))

	v1.GET("/documents", handlers.Documents.ListDocuments)
	v1.POST("/documents", handlers.Documents.CreateDocument)
	v1.POST("/documents/scan", handlers.Scan.ScanDocument)
	v1.GET("/documents/:id", handlers.Documents.GetDocument)
	v1.PUT("/documents/:id", handlers.Documents.UpdateDocument)
	v1.DELETE("/documents/:id", handlers.Documents.DeleteDocument)
	v1.GET("/documents/:id/items", handlers.Documents.GetLineItems)

	v1.POST("/parse", handlers.Parse.ParseReceiptText)
	v1.GET("/images/url", handlers.Images.ResolveURL)
}

// Start begins listening for requests and handles graceful shutdown.
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.Int("port", s.config.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server exited gracefully")
	return nil
}
