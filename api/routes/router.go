// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "hobbystudio/docs"
	"hobbystudio/internal/calendar"
	"hobbystudio/internal/insights"
	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/database"
	"hobbystudio/internal/shared/middleware"
	"hobbystudio/pkg/cache"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher messaging.Publisher
	metrics   *metrics.Metrics

	calendarService calendar.Service
	insightsService insights.Service
}

// NewRouter wires the calendar and insights services on top of the shared
// connections. Redis caching is skipped when db carries no Redis client.
func NewRouter(cfg *config.Config, db *database.DB, publisher messaging.Publisher, m *metrics.Metrics) *Router {
	r := &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		metrics:   m,
	}

	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}

	r.calendarService = calendar.NewService(calendar.NewRepository(db.SQL), cfg.Insights.ImportMaxSize)
	r.calendarService.SetPublisher(publisher)
	r.calendarService.SetMetrics(m)

	engine := insights.NewEngine(insights.WithLocation(cfg.Insights.Location()))
	r.insightsService = insights.NewService(engine, r.calendarService, cfg.Insights.CacheTTL)
	r.insightsService.SetPublisher(publisher)
	r.insightsService.SetMetrics(m)

	if cacheService != nil {
		r.calendarService.SetCacheService(cacheService)
		r.insightsService.SetCacheService(cacheService)
	}

	// Imports drop the studio's cached insights.
	r.calendarService.SetInsightsInvalidator(r.insightsService)
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if !r.config.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		studio := api.Group("/studios/:studioId")
		studio.Use(
			middleware.JWTAuthWithConfig(r.config),
			middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleStudioOwner, middleware.RoleInstructor),
			middleware.RequireStudioAccess("studioId"),
		)

		admin := api.Group("/admin")
		admin.Use(
			middleware.JWTAuthWithConfig(r.config),
			middleware.RequireRoles(middleware.RoleAdmin),
		)

		calendar.SetupCalendarRoutes(studio, calendar.NewController(r.calendarService))
		insights.SetupInsightsRoutes(studio, admin, insights.NewController(r.insightsService))
	}
}

// setupHealthRoutes sets up health check, metrics and status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		checks := gin.H{"database": "ok", "broker": "ok"}
		healthy := true

		if err := r.db.HealthCheck(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if err := r.publisher.HealthCheck(ctx); err != nil {
			checks["broker"] = err.Error()
			healthy = false
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now(),
			"service":   "hobbystudio-analytics",
		})
	})

	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
