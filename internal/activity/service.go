package activity

import (
	"sync"
	"time"

	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/pkg/clock"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultQueryLimit    = 500
	DefaultMaxQueryLimit = 2000
	DefaultQueryTimeout  = 10 * time.Second
	DefaultRecordTimeout = 5 * time.Second
	DefaultFailureBuffer = 64
	DefaultPublishBuffer = 256
)

// Options tunes a Service. Zero values select the package defaults.
type Options struct {
	Taxonomy *Taxonomy
	Clock    clock.Clock
	// Location is used to turn filter dates into instants. Defaults to UTC.
	Location      *time.Location
	DefaultLimit  int
	MaxLimit      int
	QueryTimeout  time.Duration
	RecordTimeout time.Duration
	FailureBuffer int
	// PublishBuffer bounds the events waiting for the publish worker.
	PublishBuffer int
}

// Service is the activity log: it records events on behalf of the rest of the
// application and answers filtered, enriched queries for the reporting surface.
type Service struct {
	store     Store
	users     UserDirectory
	publisher EventPublisher
	logger    logging.Logger
	taxonomy  Taxonomy
	clock     clock.Clock
	loc       *time.Location

	defaultLimit  int
	maxLimit      int
	queryTimeout  time.Duration
	recordTimeout time.Duration

	failures chan RecordFailure

	publishQueue chan publishJob
	publishWG    sync.WaitGroup
	closeMu      sync.RWMutex
	closed       bool
}

// NewService creates a new activity Service and starts its publish worker. publisher
// may be nil when no event stream is configured. Call Close to drain the worker.
func NewService(store Store, users UserDirectory, publisher EventPublisher, logger logging.Logger, opts Options) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	s := &Service{
		store:         store,
		users:         users,
		publisher:     publisher,
		logger:        logger,
		taxonomy:      DefaultTaxonomy(),
		clock:         opts.Clock,
		loc:           opts.Location,
		defaultLimit:  opts.DefaultLimit,
		maxLimit:      opts.MaxLimit,
		queryTimeout:  opts.QueryTimeout,
		recordTimeout: opts.RecordTimeout,
	}
	if opts.Taxonomy != nil {
		s.taxonomy = *opts.Taxonomy
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.maxLimit <= 0 {
		s.maxLimit = DefaultMaxQueryLimit
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultQueryLimit
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	if s.queryTimeout <= 0 {
		s.queryTimeout = DefaultQueryTimeout
	}
	if s.recordTimeout <= 0 {
		s.recordTimeout = DefaultRecordTimeout
	}
	buffer := opts.FailureBuffer
	if buffer <= 0 {
		buffer = DefaultFailureBuffer
	}
	s.failures = make(chan RecordFailure, buffer)

	publishBuffer := opts.PublishBuffer
	if publishBuffer <= 0 {
		publishBuffer = DefaultPublishBuffer
	}
	s.publishQueue = make(chan publishJob, publishBuffer)
	s.publishWG.Add(1)
	go s.publishWorker()
	return s
}

// Taxonomy returns the action taxonomy the service was built with.
func (s *Service) Taxonomy() Taxonomy {
	return s.taxonomy
}

// Failures delivers suppressed record failures. Deliveries never block the
// recorder; failures arriving while the channel is full are dropped and counted.
func (s *Service) Failures() <-chan RecordFailure {
	return s.failures
}
