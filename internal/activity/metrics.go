package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeRecorded = "recorded"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

var (
	recordTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_record_total",
			Help: "Activity record calls, labeled by outcome (recorded, rejected, failed).",
		},
		[]string{"outcome"},
	)

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activity_publish_failures_total",
		Help: "Recorded activity events that could not be published to the event stream.",
	})

	publishDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activity_publish_drops_total",
		Help: "Recorded activity events not published because the publish queue was full.",
	})

	failureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activity_failure_drops_total",
		Help: "Record failures not delivered on the failure channel because it was full.",
	})

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activity_query_duration_seconds",
			Help:    "Duration of activity queries, labeled by outcome (ok, invalid, error).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)
