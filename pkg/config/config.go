package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// App holds runtime configuration derived from env vars.
type App struct {
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"mysql"`
	AutoMigrate   bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	KafkaEnabled  bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers  string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	ActivityTopic string `envconfig:"ACTIVITY_TOPIC" default:"inventory.activity.recorded"`
	DigestTopic   string `envconfig:"DIGEST_TOPIC" default:"inventory.activity.digest"`

	APIPort     string   `envconfig:"API_PORT" default:"8080"`
	Environment string   `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string   `envconfig:"LOG_ENCODING" default:"json"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	Timezone           string        `envconfig:"ACTIVITY_TIMEZONE" default:"UTC"`
	QueryDefaultLimit  int           `envconfig:"ACTIVITY_QUERY_DEFAULT_LIMIT" default:"500"`
	QueryMaxLimit      int           `envconfig:"ACTIVITY_QUERY_MAX_LIMIT" default:"2000"`
	QueryTimeout       time.Duration `envconfig:"ACTIVITY_QUERY_TIMEOUT" default:"10s"`
	RecordTimeout      time.Duration `envconfig:"RECORD_TIMEOUT" default:"5s"`
	RecordFailureQueue int           `envconfig:"RECORD_FAILURE_BUFFER" default:"64"`
	PublishQueue       int           `envconfig:"ACTIVITY_PUBLISH_BUFFER" default:"256"`

	DigestCron   string        `envconfig:"DIGEST_CRON" default:"0 0 * * *"`
	DigestWindow time.Duration `envconfig:"DIGEST_WINDOW" default:"24h"`
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() (App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return App{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.CORSOrigins = trimOrigins(cfg.CORSOrigins)

	if cfg.QueryDefaultLimit < 1 {
		return App{}, fmt.Errorf("ACTIVITY_QUERY_DEFAULT_LIMIT must be positive, got %d", cfg.QueryDefaultLimit)
	}
	if cfg.QueryMaxLimit < cfg.QueryDefaultLimit {
		return App{}, fmt.Errorf("ACTIVITY_QUERY_MAX_LIMIT (%d) must not be below the default limit (%d)", cfg.QueryMaxLimit, cfg.QueryDefaultLimit)
	}
	switch cfg.StorageDriver {
	case "mysql", "memory":
	default:
		return App{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

// Brokers splits the comma separated broker list.
func (a App) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(a.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Location resolves the configured reporting timezone.
func (a App) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", a.Timezone, err)
	}
	return loc, nil
}

// trimOrigins drops blank entries; an empty list allows every origin.
func trimOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
