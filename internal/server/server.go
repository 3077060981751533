// Package server is the thin HTTP shell over the audit orchestrator.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/auditor"
	"github.com/xkilldash9x/a11yscope/internal/config"
)

// Analyzer is the single operation the HTTP surface exposes.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*schemas.AuditResult, error)
}

// Server hosts the HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	URL string `json:"url"`
}

// New assembles the router and the underlying http.Server.
func New(cfg config.ServerConfig, analyzer Analyzer, logger *zap.Logger) *Server {
	log := logger.Named("server")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogging(log), recovery(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.POST("/api/analyze", func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a \"url\" field"})
			return
		}

		result, err := analyzer.Analyze(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, auditor.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Rule-engine failure: the audit has no product to return.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: log,
	}
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
