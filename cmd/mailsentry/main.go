package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mailsentry/mailsentry/pkg/config"
	handlers "github.com/mailsentry/mailsentry/pkg/handlers/http"
	"github.com/mailsentry/mailsentry/pkg/infra/kvstore"
	infraLogger "github.com/mailsentry/mailsentry/pkg/infra/logger"
	"github.com/mailsentry/mailsentry/pkg/infra/metrics"
	"github.com/mailsentry/mailsentry/pkg/infra/riskstore"
	"github.com/mailsentry/mailsentry/pkg/server"
	"github.com/mailsentry/mailsentry/pkg/validation"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger("mailsentry")

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("config file not loaded, using defaults and environment")
	}
	cfg := config.GetConfig()

	redisClient, err := kvstore.NewRedisClient(kvstore.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}

	breaker := kvstore.NewCircuitBreaker(
		"riskstore-redis",
		cfg.RiskStore.BreakerTimeout,
		cfg.RiskStore.BreakerMaxFailures,
	)
	kv := kvstore.NewRedisStore(redisClient, logger, breaker)

	store := riskstore.NewStore(kv, logger, riskstore.Config{
		Key:      cfg.RiskStore.Key,
		FreshFor: cfg.RiskStore.FreshFor,
		Source:   cfg.RiskStore.Source,
	})

	engine := validation.NewEngine(logger, store, cfg.Scoring)

	metricsWorker := metrics.NewWorker(logger, metrics.NewLogSink(logger), cfg.Metrics.QueueSize)
	metricsWorker.StartWorkers(cfg.Metrics.Workers)

	handlerTransport := handlers.HandlerTransport{
		ValidateEmailHandler:      handlers.NewValidateEmailHandler(logger, engine, metricsWorker),
		BulkUpdateProfilesHandler: handlers.NewBulkUpdateProfilesHandler(logger, store),
		UpdateProfileHandler:      handlers.NewUpdateProfileHandler(logger, store),
		GetProfileHandler:         handlers.NewGetProfileHandler(logger, store),
		ListProfilesHandler:       handlers.NewListProfilesHandler(logger, store),
		GetMetadataHandler:        handlers.NewGetMetadataHandler(logger, store),
		InvalidateCacheHandler:    handlers.NewInvalidateCacheHandler(logger, store),
	}

	srv := server.NewAPIServer(server.APIServerDI{
		Config:           cfg,
		Logger:           logger,
		HandlerTransport: handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	metricsWorker.Shutdown()
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	if err := redisClient.Close(); err != nil {
		logger.WithError(err).Error("failed to close redis client")
	}
	fmt.Println("server gracefully stopped")
}
