package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/activity"
	"github.com/dhima/inventory-activity/internal/api/handlers"
	"github.com/dhima/inventory-activity/internal/api/middleware"
	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/storage"
	"github.com/dhima/inventory-activity/pkg/config"
	"github.com/dhima/inventory-activity/platform/events"
)

// Backend is a Log Store that also serves as users directory and health probe.
type Backend interface {
	activity.Store
	activity.UserDirectory
	handlers.Pinger
}

// Server orchestrates HTTP routing and dependencies for the API service.
type Server struct {
	config   config.App
	logger   logging.Logger
	router   *gin.Engine
	backend  Backend
	activity *activity.Service
	closers  []func() error
}

// NewServer connects the configured storage and event stream and wires the API.
func NewServer(cfg config.App, logger logging.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var closers []func() error
	var backend Backend
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory activity store; events are lost on restart")
		backend = storage.NewMemoryStore(nil)
	default:
		client, closeDB, err := connectDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, closeDB)
		backend = client
	}

	var publisher *events.Publisher
	var eventPublisher activity.EventPublisher
	if cfg.KafkaEnabled {
		publisher = events.NewPublisher(cfg.Brokers(), cfg.ActivityTopic, logger)
		eventPublisher = publisher
		closers = append(closers, publisher.Close)
		logger.Info("publishing activity to kafka",
			zap.Strings("brokers", cfg.Brokers()),
			zap.String("topic", publisher.Topic()))
	}

	svc := activity.NewService(backend, backend, eventPublisher, logger.With(zap.String("component", "activity")), activity.Options{
		Location:      loc,
		DefaultLimit:  cfg.QueryDefaultLimit,
		MaxLimit:      cfg.QueryMaxLimit,
		QueryTimeout:  cfg.QueryTimeout,
		RecordTimeout: cfg.RecordTimeout,
		FailureBuffer: cfg.RecordFailureQueue,
		PublishBuffer: cfg.PublishQueue,
	})
	// Closers run in reverse, so queued events reach the publisher before it closes.
	closers = append(closers, svc.Close)

	server := New(cfg, logger, backend, svc)
	server.closers = closers
	return server, nil
}

// New wires the router around already constructed dependencies.
func New(cfg config.App, logger logging.Logger, backend Backend, svc *activity.Service) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	server := &Server{
		config:   cfg,
		logger:   logger,
		backend:  backend,
		activity: svc,
	}
	server.setupRouter()
	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()
	zapLogger := logging.Unwrap(s.logger)

	// Recovery first so it catches panics from the rest of the chain.
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(zapLogger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zap.Field {
			return []zap.Field{zap.String("request_id", c.GetString(middleware.RequestIDKey))}
		},
	}))
	router.Use(middleware.Metrics())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/health", handlers.NewHealthHandler(s.backend, s.logger).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.logger).Metrics)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		activityHandler := handlers.NewActivityHandler(s.activity, s.logger)
		logs := v1.Group("/activity")
		{
			logs.GET("", activityHandler.ListActivity)
			logs.POST("", activityHandler.RecordActivity)
			logs.GET("/actions", activityHandler.KnownActions)
			logs.GET("/stats", activityHandler.Stats)
			logs.GET("/:id", activityHandler.GetActivity)
		}
	}

	s.router = router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.config.CORSOrigins) == 0 || (len(s.config.CORSOrigins) == 1 && s.config.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.config.CORSOrigins
	cfg.AllowCredentials = true
	return cfg
}

// Serve starts the HTTP server with graceful shutdown support.
func (s *Server) Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.drainFailures(ctx)

	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("log_level", s.config.LogLevel),
			zap.String("storage", s.config.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		s.close()
		return err
	}

	s.close()
	s.logger.Info("server stopped")
	return nil
}

// drainFailures consumes suppressed record failures so the buffer never stays full.
// Each failure has already been logged and counted by the recorder.
func (s *Server) drainFailures(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.activity.Failures():
			s.logger.Debug("record failure drained",
				zap.String("stage", f.Stage),
				zap.Time("at", f.At))
		}
	}
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("failed to close resource", zap.Error(err))
		}
	}
	s.closers = nil
}

func connectDatabase(cfg config.App, logger logging.Logger) (*storage.MySQLClient, func() error, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required when STORAGE_DRIVER=mysql")
	}

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := storage.NewMySQLClient(db)
	if err := client.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := client.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("activity schema ensured")
	}

	return client, db.Close, nil
}
