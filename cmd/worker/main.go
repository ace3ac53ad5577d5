package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/verihub/verify-engine/internal/config"
	"github.com/verihub/verify-engine/internal/infra/postgresql"
	"github.com/verihub/verify-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/verihub/verify-engine/internal/infra/redis"
	"github.com/verihub/verify-engine/internal/observability"
	"github.com/verihub/verify-engine/internal/provider"
	"github.com/verihub/verify-engine/internal/queue"
	"github.com/verihub/verify-engine/internal/repository"
	"github.com/verihub/verify-engine/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	consumer := queue.NewRabbitMQConsumer(rabbit, cfg.WorkerConcurrency, logger)
	defer consumer.Close() //nolint:errcheck

	registry := provider.NewRegistryFromConfig(cfg.ProviderConfig())

	verifications, err := service.NewVerificationService(
		registry,
		repository.NewGormVerificationRepo(db),
		rateLimiter,
		logger,
	)
	if err != nil {
		logger.Fatal("verification service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	verifications.SetMetrics(metrics)

	worker, err := service.NewWorkerService(verifications, consumer, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal("worker initialization failed", zap.Error(err))
	}
	worker.SetMetrics(metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("verify-engine worker started", zap.Int("concurrency", cfg.WorkerConcurrency))

	if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}

	logger.Info("worker shut down")
}
