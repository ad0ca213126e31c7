// Package httpapi exposes upload, document and question endpoints over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ErrMissingPorts is returned when a required service is not provided.
var ErrMissingPorts = errors.New("httpapi: ask, ingest and document services are required")

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Ports aggregates the driving services the API calls.
type Ports struct {
	Ask      driving.AskService
	Ingest   driving.IngestService
	Document driving.DocumentService
}

// Config holds HTTP server configuration.
type Config struct {
	// Port is the listen port.
	Port int

	// AllowedOrigins are the CORS origins. Empty or "*" allows any origin.
	AllowedOrigins []string

	// MaxUploadBytes limits multipart upload size.
	MaxUploadBytes int64

	// UploadDir is where uploaded files are stored before ingestion.
	UploadDir string

	// EmbeddingModel, LLMProvider and LLMModel are reported by /api/config,
	// /api/health and /api/models.
	EmbeddingModel string
	LLMProvider    string
	LLMModel       string

	// Version is reported by /health and /api/config.
	Version string
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	ports   *Ports
	router  *gin.Engine
	started time.Time
	now     func() time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(cfg Config, ports *Ports) (*Server, error) {
	if ports == nil || ports.Ask == nil || ports.Ingest == nil || ports.Document == nil {
		return nil, ErrMissingPorts
	}
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("httpapi: upload directory is required")
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:   cfg,
		ports: ports,
		now:   time.Now,
	}
	s.started = s.now()
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if logger.IsVerbose() {
		router.Use(gin.LoggerWithWriter(logger.Output()))
	}
	router.Use(cors(s.cfg.AllowedOrigins))

	router.GET("/health", s.health)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := router.Group("/api")
	{
		api.GET("/health", s.apiHealth)
		api.GET("/config", s.config)
		api.GET("/models", s.models)
		api.POST("/upload", s.upload)
		api.GET("/documents", s.listDocuments)
		api.GET("/documents/:docId", s.getDocument)
		api.DELETE("/documents/:docId", s.deleteDocument)
		api.POST("/query", s.query)
		api.POST("/ask", s.ask)
	}

	return router
}
