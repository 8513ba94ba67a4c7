// Package api exposes the screening engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
	"github.com/clearwater-labs/amlguard/internal/aml/workflow"
)

// Server serves screening requests over HTTP
type Server struct {
	router *gin.Engine
	logger *zap.Logger
	engine *workflow.Engine
}

// ScreenRequest is the payload of POST /v1/screen
type ScreenRequest struct {
	Transaction *aml.Transaction `json:"transaction" binding:"required"`
	Customer    *aml.Customer    `json:"customer" binding:"required"`
}

// NewServer creates the API server around a screening engine.
func NewServer(logger *zap.Logger, engine *workflow.Engine) *Server {
	server := &Server{
		logger: logger,
		engine: engine,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.GET("/healthz", server.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/screen", server.handleScreen)

	server.router = router
	return server
}

// Run starts the HTTP listener.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScreen(c *gin.Context) {
	var req ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report, err := s.engine.RunAnalysis(c.Request.Context(), req.Transaction, req.Customer)
	if err != nil {
		switch {
		case errors.Is(err, aml.ErrInvalidCase):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, aml.ErrRouting):
			s.logger.Error("routing error", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "routing_error"})
		default:
			s.logger.Error("screening failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}
