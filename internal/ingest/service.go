package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/metrics"
	"github.com/akave-ai/seclog/internal/model"
)

// Writer persists a batch atomically and returns the number of records written.
type Writer interface {
	WriteBatch(ctx context.Context, records []model.LogRecord) (int, error)
}

// Archiver receives batches after they were committed.
type Archiver interface {
	ArchiveBatch(ctx context.Context, batchID string, records []model.LogRecord) error
}

// Result describes one processed ingest request.
type Result struct {
	BatchID   string
	Written   int
	Rejected  []Rejection
	Fallbacks int
}

// Service runs the ingestion pipeline for one request at a time; it keeps no
// per-request state and is safe for concurrent use.
type Service struct {
	writer   Writer
	archiver Archiver
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewService returns a Service. archiver may be nil.
func NewService(w Writer, a Archiver, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		writer:   w,
		archiver: a,
		metrics:  m,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Ingest parses body, builds the batch and writes it in one transaction.
// It returns ErrMalformedRequest for a body without a "logs" array and
// ErrStorage when the write failed. An empty batch is not an error.
func (s *Service) Ingest(ctx context.Context, body []byte) (Result, error) {
	res := Result{BatchID: uuid.NewString()}
	log := s.logger.With().Str("batch_id", res.BatchID).Logger()

	items, err := ParsePayload(body)
	if err != nil {
		s.metrics.BatchesTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		log.Warn().Err(err).Msg("rejecting malformed ingest request")
		return res, err
	}
	s.metrics.ItemsReceived.Add(float64(len(items)))

	batch := BuildBatch(items)
	res.Rejected = batch.Rejected
	res.Fallbacks = len(batch.Fallbacks)
	for _, r := range batch.Rejected {
		s.metrics.ItemsRejected.WithLabelValues(r.Reason).Inc()
		log.Warn().Int("index", r.Index).Err(r.Err).Msg("skipping malformed log item")
	}
	for _, i := range batch.Fallbacks {
		s.metrics.TimestampFallbacks.Inc()
		log.Warn().Int("index", i).Msg("could not parse timestamp, storing it as is")
	}

	if len(batch.Records) == 0 {
		s.metrics.BatchesTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		log.Info().Int("rejected", len(batch.Rejected)).Msg("no valid logs to insert")
		return res, nil
	}

	start := time.Now()
	n, err := s.writer.WriteBatch(ctx, batch.Records)
	s.metrics.WriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.BatchesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error().Err(err).Int("records", len(batch.Records)).Msg("error processing log request")
		return res, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	res.Written = n
	s.metrics.RecordsWritten.Add(float64(n))
	s.metrics.BatchesTotal.WithLabelValues(metrics.OutcomeStored).Inc()
	log.Info().Int("written", n).Int("rejected", len(batch.Rejected)).Msg("stored log batch")

	if s.archiver != nil {
		if err := s.archiver.ArchiveBatch(ctx, res.BatchID, batch.Records); err != nil {
			s.metrics.ArchiveFailures.Inc()
			log.Error().Err(err).Msg("archive committed batch")
		}
	}
	return res, nil
}
