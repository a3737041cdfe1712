package main

import (
	"log"

	"go.uber.org/zap"

	_ "github.com/dhima/inventory-activity/docs" // Import generated docs
	"github.com/dhima/inventory-activity/internal/api"
	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/pkg/config"
)

// @title Inventory Activity Log API
// @version 1.0
// @description Append-only audit trail of user actions in the inventory application, with filtered reporting.
// @description
// @description ## Features
// @description - **Recording**: other services post attributable actions; audit failures never abort the audited operation
// @description - **Reporting**: filter by user, action, date range and free-text search, newest first, with cursor paging
// @description - **Action vocabulary**: registered actions merged with every action ever recorded
// @description - **Kafka**: recorded events are streamed to a topic for downstream consumers

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

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

	srv, err := api.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build api server", zap.Error(err))
	}
	if err := srv.Serve(); err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}
