package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/verihub/verify-engine/internal/config"
	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/handler"
	"github.com/verihub/verify-engine/internal/infra/postgresql"
	"github.com/verihub/verify-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/verihub/verify-engine/internal/infra/redis"
	"github.com/verihub/verify-engine/internal/observability"
	"github.com/verihub/verify-engine/internal/provider"
	"github.com/verihub/verify-engine/internal/queue"
	"github.com/verihub/verify-engine/internal/repository"
	"github.com/verihub/verify-engine/internal/service"
	"github.com/verihub/verify-engine/internal/transport"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

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

	registry := provider.NewRegistryFromConfig(cfg.ProviderConfig())
	if err := seedProviderDefinitions(db, logger); err != nil {
		logger.Fatal("provider seed failed", zap.Error(err))
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	publisher := queue.NewRabbitMQPublisher(rabbit)
	defer publisher.Close() //nolint:errcheck

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

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterVerificationRoutes(app, verifications, publisher); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	go func() {
		logger.Info("verify-engine api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("api server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// seedProviderDefinitions records the known provider fleet in the service
// table. Existing rows are left untouched.
func seedProviderDefinitions(db *gorm.DB, logger *zap.Logger) error {
	definitions := make([]repository.ServiceDefinition, 0, len(domain.Providers()))
	for _, name := range domain.Providers() {
		definitions = append(definitions, repository.ServiceDefinition{
			Name:     name.String(),
			BaseURL:  provider.BaseURL(name),
			IsActive: true,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	services := repository.NewGormServiceRepo(db)
	if err := services.Seed(ctx, definitions); err != nil {
		return err
	}

	active, err := services.ListActive(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(active))
	for _, def := range active {
		names = append(names, def.Name)
	}
	logger.Info("provider definitions seeded", zap.Strings("active", names))

	return nil
}
