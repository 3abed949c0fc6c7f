package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hobbystudio/api/routes"
	"hobbystudio/internal/calendar"
	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/database"
	"hobbystudio/internal/shared/middleware"
	"hobbystudio/pkg/logger"
	"hobbystudio/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title                       Studio Analytics API
// @version                     1.0
// @description                 Calendar import and scheduling intelligence for hobby studios.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			logger.GetDefault().Info("Production environment: using container environment variables")
		} else {
			logger.GetDefault().Info("No .env file found, using system environment variables")
		}
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Rebuild after .env so LOG_LEVEL and GIN_MODE apply.
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	logger.SetDefault(appLogger)
	appLogger.Info("Starting studio analytics",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	if err := calendar.RegisterValidators(); err != nil {
		appLogger.Error("Failed to register validators", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	publisher := newPublisher(cfg, appLogger)
	defer publisher.Close()

	appMetrics := metrics.New()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:           cfg.RateLimit.Enabled,
			WindowDuration:    cfg.RateLimit.WindowDuration,
			DefaultRequests:   cfg.RateLimit.DefaultRequests,
			PublicRequests:    cfg.RateLimit.PublicRequests,
			AnalyticsRequests: cfg.RateLimit.AnalyticsRequests,
			ImportRequests:    cfg.RateLimit.ImportRequests,
			AdminRequests:     cfg.RateLimit.AdminRequests,
			HealthRequests:    cfg.RateLimit.HealthRequests,
			WhitelistedIPs:    cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, publisher, appMetrics, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// newPublisher connects to Kafka when enabled. A broker outage at startup
// degrades to a no-op publisher instead of failing the API.
func newPublisher(cfg *config.Config, appLogger *logger.Logger) messaging.Publisher {
	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, domain events will not be published")
		return messaging.NoopPublisher{}
	}

	producerCfg := messaging.DefaultProducerConfig()
	producerCfg.Brokers = cfg.Kafka.Brokers
	producerCfg.EventsImportedTopic = cfg.Kafka.EventsImportedTopic
	producerCfg.InsightsGeneratedTopic = cfg.Kafka.InsightsGeneratedTopic
	producerCfg.RetryMax = cfg.Kafka.MaxRetries

	publisher, err := messaging.NewKafkaPublisher(producerCfg)
	if err != nil {
		appLogger.Error("Failed to connect to Kafka, continuing without publishing", slog.Any("error", err))
		return messaging.NoopPublisher{}
	}
	appLogger.Info("Kafka publisher connected", slog.Any("brokers", cfg.Kafka.Brokers))
	return publisher
}

func setupRouter(cfg *config.Config, db *database.DB, publisher messaging.Publisher, m *metrics.Metrics, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	routes.NewRouter(cfg, db, publisher, m).SetupRoutes(engine)
	return engine
}
