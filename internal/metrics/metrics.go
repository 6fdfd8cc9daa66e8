package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seclog"

// Batch outcomes used as the "outcome" label of BatchesTotal.
const (
	OutcomeStored    = "stored"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Metrics holds the ingestion counters. All collectors are registered on the
// registerer passed to New.
type Metrics struct {
	ItemsReceived      prometheus.Counter
	ItemsRejected      *prometheus.CounterVec
	TimestampFallbacks prometheus.Counter
	RecordsWritten     prometheus.Counter
	BatchesTotal       *prometheus.CounterVec
	WriteDuration      prometheus.Histogram
	ArchiveFailures    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ItemsReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_received_total",
			Help:      "Log items received in well-formed batches",
		}),
		ItemsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_rejected_total",
			Help:      "Log items skipped because they failed validation",
		}, []string{"reason"}),
		TimestampFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamp_fallback_total",
			Help:      "Timestamps stored as submitted because they did not parse",
		}),
		RecordsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Log records committed to the database",
		}),
		BatchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Ingest requests by outcome",
		}, []string{"outcome"}),
		WriteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Time spent writing one batch in a transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		ArchiveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Committed batches that could not be archived",
		}),
	}
}
