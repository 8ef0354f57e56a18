// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"healthops/internal/app"
	"healthops/internal/domain/entities/client"
	"healthops/internal/domain/entities/healthplan"
	"healthops/internal/domain/entities/networkentity"
	"healthops/internal/domain/entities/networkphysician"
	"healthops/internal/domain/entities/payer"
	"healthops/internal/domain/entities/perfyear"
	"healthops/internal/domain/entities/vbpaylicense"
	"healthops/internal/domain/entities/vbpaysettings"
	"healthops/internal/infrastructure/http/v1/handlers"
	"healthops/internal/infrastructure/http/v1/middleware"
	"healthops/internal/infrastructure/metrics"
	"healthops/internal/metadata"
	"healthops/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Services for authentication and every audited entity
	Services *app.Services

	// Metadata stores entity definitions
	Metadata *metadata.Registry

	// Metrics is optional; nil disables /metrics and request instrumentation
	Metrics *metrics.Metrics

	// RateLimiter is optional; nil disables throttling of /api/v1
	RateLimiter *middleware.RateLimiter

	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Handler())
	}
	{
		public := api.Group("")
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.Services.Auth))

		baseHandler := handlers.NewBaseHandler()
		handlers.NewAuthHandler(baseHandler, cfg.Services.Auth).RegisterRoutes(public, protected)

		registerMetaRoutes(protected, cfg)
		registerEntityRoutes(protected, cfg)
	}

	return router
}

// WithCORS wraps h with a CORS policy for the given origins.
// No origins leaves h unwrapped.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID, middleware.HeaderTraceID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
	}).Handler(h)
}

// registerMetaRoutes registers metadata endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Metadata == nil {
		return
	}

	handler := handlers.NewMetadataHandler(handlers.NewBaseHandler(), cfg.Metadata)
	meta := rg.Group("/meta")
	{
		meta.GET("/entities", handler.ListEntities)
		meta.GET("/entities/:name", handler.GetEntity)
	}
}

// registerEntityRoutes registers one route group per audited entity.
func registerEntityRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	s := cfg.Services

	RegisterEntityRoutes(rg.Group("/"+app.PathClients),
		handlers.NewEntityHandler[*client.Client](base, s.Clients, client.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathPayers),
		handlers.NewEntityHandler[*payer.Payer](base, s.Payers, payer.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathNetworkEntities),
		handlers.NewEntityHandler[*networkentity.NetworkEntity](base, s.NetworkEntities, networkentity.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathNetworkPhysicians),
		handlers.NewEntityHandler[*networkphysician.NetworkPhysician](base, s.NetworkPhysicians, networkphysician.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathHealthPlans),
		handlers.NewEntityHandler[*healthplan.HealthPlan](base, s.HealthPlans, healthplan.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathPerfYears),
		handlers.NewEntityHandler[*perfyear.PhysPerfYearConfig](base, s.PerfYears, perfyear.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathLicenses),
		handlers.NewEntityHandler[*vbpaylicense.VBPayLicense](base, s.Licenses, vbpaylicense.New))
	RegisterEntityRoutes(rg.Group("/"+app.PathSettings),
		handlers.NewEntityHandler[*vbpaysettings.VBPayGlobalSettings](base, s.Settings, vbpaysettings.New))
}
