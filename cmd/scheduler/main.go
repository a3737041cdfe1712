package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/scheduler"
	"github.com/dhima/inventory-activity/internal/storage"
	"github.com/dhima/inventory-activity/pkg/config"
	"github.com/dhima/inventory-activity/platform/events"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	var publisher scheduler.DigestPublisher
	if cfg.KafkaEnabled {
		p := events.NewPublisher(cfg.Brokers(), cfg.DigestTopic, logger)
		defer p.Close()
		publisher = p
		logger.Info("publishing digests to kafka", zap.String("topic", p.Topic()))
	}

	engine, err := scheduler.NewEngine(scheduler.Config{
		Cron:     cfg.DigestCron,
		Timezone: cfg.Timezone,
		Window:   cfg.DigestWindow,
	}, storage.NewMySQLClient(db), publisher, logger.With(zap.String("component", "digest")))
	if err != nil {
		logger.Fatal("invalid digest schedule", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("digest scheduler stopped", zap.Error(err))
	}
	logger.Info("digest scheduler stopped")
}
