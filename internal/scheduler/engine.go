package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/pkg/clock"
	"github.com/dhima/inventory-activity/platform/events"
)

// CountSource is the read side of the Log Store the digest needs.
type CountSource interface {
	CountByAction(ctx context.Context, q models.ActivityQuery) (map[string]int64, error)
}

// DigestPublisher receives finished digests.
type DigestPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Config configures the digest engine.
type Config struct {
	Cron     string
	Timezone string
	Window   time.Duration
	// RunTimeout bounds a single digest run. Defaults to one minute.
	RunTimeout time.Duration
}

// Engine periodically summarizes recent activity and publishes a digest.
type Engine struct {
	cfg       Config
	loc       *time.Location
	source    CountSource
	publisher DigestPublisher
	logger    logging.Logger
	clock     clock.Clock
}

// NewEngine validates cfg and builds an engine. publisher may be nil, in which case
// digests are only logged.
func NewEngine(cfg Config, source CountSource, publisher DigestPublisher, logger logging.Logger) (*Engine, error) {
	return NewEngineWithClock(cfg, source, publisher, logger, clock.RealClock{})
}

// NewEngineWithClock is NewEngine with an injectable clock.
func NewEngineWithClock(cfg Config, source CountSource, publisher DigestPublisher, logger logging.Logger, clk clock.Clock) (*Engine, error) {
	if source == nil {
		return nil, errors.New("digest source is required")
	}
	if _, err := ParseSchedule(cfg.Cron); err != nil {
		return nil, err
	}
	loc, err := resolveTimezone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("digest window must be positive, got %s", cfg.Window)
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	return &Engine{
		cfg:       cfg,
		loc:       loc,
		source:    source,
		publisher: publisher,
		logger:    logger,
		clock:     clk,
	}, nil
}

// RunOnce counts activity over the trailing window ending now and publishes the digest.
func (e *Engine) RunOnce(ctx context.Context) (events.ActivityDigest, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	defer cancel()

	end := e.clock.Now()
	start := end.Add(-e.cfg.Window)

	counts, err := e.source.CountByAction(ctx, models.ActivityQuery{Since: &start, Until: &end})
	if err != nil {
		return events.ActivityDigest{}, fmt.Errorf("failed to count activity: %w", err)
	}

	digest := events.ActivityDigest{
		Type:        events.TypeActivityDigest,
		WindowStart: start,
		WindowEnd:   end,
		ByAction:    counts,
		GeneratedAt: end,
	}
	for _, n := range counts {
		digest.Total += n
	}

	if e.publisher == nil {
		e.logger.Info("activity digest",
			zap.Time("window_start", start),
			zap.Time("window_end", end),
			zap.Int64("total", digest.Total),
			zap.Any("by_action", counts))
		return digest, nil
	}

	if err := e.publisher.Publish(ctx, end.Format(time.RFC3339), digest); err != nil {
		return digest, fmt.Errorf("failed to publish digest: %w", err)
	}

	e.logger.Info("activity digest published",
		zap.Time("window_end", end),
		zap.Int64("total", digest.Total))
	return digest, nil
}

// Run fires RunOnce on the configured schedule until ctx is canceled.
// A failed run is logged and retried at the next tick.
func (e *Engine) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(e.loc),
		cron.WithLogger(cronLogger{e.logger}),
		cron.WithChain(cron.Recover(cronLogger{e.logger}), cron.SkipIfStillRunning(cronLogger{e.logger})),
	)

	if _, err := c.AddFunc(e.cfg.Cron, func() {
		if _, err := e.RunOnce(ctx); err != nil {
			e.logger.Error("activity digest failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}

	if next, err := NextRun(e.cfg.Cron, e.cfg.Timezone, e.clock.Now()); err == nil {
		e.logger.Info("digest scheduler started",
			zap.String("cron", e.cfg.Cron),
			zap.String("timezone", e.loc.String()),
			zap.Time("next_run", next))
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
