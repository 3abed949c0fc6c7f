package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hobbystudio/internal/calendar"
	"hobbystudio/internal/insights"
	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/database"
	"hobbystudio/pkg/cache"
	"hobbystudio/pkg/logger"

	"github.com/joho/godotenv"
)

// insights-worker consumes calendar import messages and precomputes the
// affected studio's insights so the next dashboard read is a cache hit.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	logger.SetDefault(appLogger)

	if !cfg.Kafka.Enabled {
		appLogger.Error("KAFKA_ENABLED must be true to run the insights worker")
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	producerCfg := messaging.DefaultProducerConfig()
	producerCfg.Brokers = cfg.Kafka.Brokers
	producerCfg.EventsImportedTopic = cfg.Kafka.EventsImportedTopic
	producerCfg.InsightsGeneratedTopic = cfg.Kafka.InsightsGeneratedTopic
	publisher, err := messaging.NewKafkaPublisher(producerCfg)
	if err != nil {
		appLogger.Error("Failed to create publisher", slog.Any("error", err))
		os.Exit(1)
	}
	defer publisher.Close()

	calendarService := calendar.NewService(calendar.NewRepository(db.SQL), cfg.Insights.ImportMaxSize)
	engine := insights.NewEngine(insights.WithLocation(cfg.Insights.Location()))
	insightsService := insights.NewService(engine, calendarService, cfg.Insights.CacheTTL)
	insightsService.SetCacheService(cache.NewService(db.Redis))
	insightsService.SetPublisher(publisher)
	insightsService.SetMetrics(metrics.New())

	consumerCfg := messaging.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.GroupID = cfg.Kafka.ConsumerGroupID
	consumerCfg.Topics = []string{cfg.Kafka.EventsImportedTopic}
	consumerCfg.MaxRetries = cfg.Kafka.MaxRetries
	consumerCfg.RetryBackoffDuration = cfg.Kafka.RetryBackoff

	consumer, err := messaging.NewConsumer(consumerCfg, insights.ImportHandler(insightsService))
	if err != nil {
		appLogger.Error("Failed to create consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx, cfg.Insights.WorkerCount)
	appLogger.Info("Insights worker started",
		slog.Int("workers", cfg.Insights.WorkerCount),
		slog.String("topic", cfg.Kafka.EventsImportedTopic),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Stopping insights worker...")
	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping consumer", slog.Any("error", err))
	}
	appLogger.Info("Insights worker stopped")
}
