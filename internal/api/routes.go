// Package api provides the REST API server.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/valuation-dashboard/internal/dashboard"
	"github.com/user/valuation-dashboard/internal/logger"
	"github.com/user/valuation-dashboard/pkg/config"
)

// Server represents the API server.
type Server struct {
	router *gin.Engine
	engine *dashboard.Engine
	config *config.Config
	log    *zap.Logger
}

// NewServer creates a new API server.
func NewServer(engine *dashboard.Engine, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		config: cfg,
		log:    log,
	}

	s.setupRouter()
	return s
}

// setupRouter sets up the Gin router with all routes.
func (s *Server) setupRouter() {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(s.log))
	r.Use(corsMiddleware())
	if s.config.Server.MaxUploadSize > 0 {
		r.MaxMultipartMemory = s.config.Server.MaxUploadSize
	}

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)

		// Sessions
		api.POST("/sessions", s.handleUpload)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.GET("/sessions/:id/tables/:table", s.handleGetTable)
		api.GET("/sessions/:id/assumptions", s.handleGetAssumptions)
		api.PUT("/sessions/:id/assumptions", s.handleUpdateAssumptions)

		// Valuation
		api.POST("/sessions/:id/dcf", s.handleDCF)
		api.POST("/sessions/:id/eps", s.handleEPS)
		api.POST("/sessions/:id/sensitivity", s.handleSensitivity)
		api.GET("/sessions/:id/verdict", s.handleVerdict)
		api.GET("/sessions/:id/report", s.handleReport)

		// Collaborators
		api.GET("/filings/:symbol", s.handleFilings)
		api.GET("/quotes/:symbol", s.handleQuote)
		api.GET("/news/:symbol", s.handleNews)
		api.POST("/documents/text", s.handleDocumentText)
	}

	s.router = r
}

// Router returns the Gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// corsMiddleware adds CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
