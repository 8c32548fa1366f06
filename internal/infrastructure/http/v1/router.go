// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"inventra/internal/domain/documents"
	"inventra/internal/domain/sequence"
	"inventra/internal/infrastructure/http/v1/handlers"
	"inventra/internal/infrastructure/http/v1/middleware"
	"inventra/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Sequences holds one reconciler per document type
	Sequences *sequence.Registry

	// Documents runs forms and document creation
	Documents *documents.Service

	// HealthChecks are run by /health/ready, keyed by dependency name
	HealthChecks map[string]handlers.CheckFunc

	// CORSAllowedOrigins restricts browser origins; empty allows any
	CORSAllowedOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.Session())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")

	registerSequenceRoutes(v1.Group("/sequences"), handlers.NewSequenceHandler(base, cfg.Sequences))
	registerPricingRoutes(v1.Group("/pricing"), handlers.NewPricingHandler(base))
	registerFormRoutes(v1.Group("/forms"), handlers.NewFormHandler(base, cfg.Documents))

	return router
}
