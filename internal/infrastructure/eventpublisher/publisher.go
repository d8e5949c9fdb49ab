package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/usecase"
)

// Worker drains the outbox and hands events to a publisher.
// Delivery is at least once: an event is marked only after it was published.
type Worker struct {
	outboxRepo usecase.OutboxRepository
	publisher  usecase.EventPublisher
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	now        func() time.Time
}

// Config for Worker.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  usecase.EventPublisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
}

// NewWorker creates a new Worker.
func NewWorker(cfg Config) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}

	return &Worker{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger.With().Str("component", "outbox").Logger(),
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		now:        time.Now,
	}
}

// Start polls until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("outbox worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("outbox worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain keeps processing full batches so a backlog clears within one tick.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.ProcessBatch(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("error processing outbox")
			return
		}
		if n < w.batchSize {
			return
		}
	}
}

// ProcessBatch publishes one batch of unpublished events and returns how
// many were fetched. A failed event stays in the outbox for the next poll.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.outboxRepo.GetUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	w.logger.Debug().Int("count", len(events)).Msg("processing events")

	failed := 0
	for _, event := range events {
		if err := w.publisher.Publish(ctx, event); err != nil {
			failed++
			w.observe(false)
			w.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			continue
		}

		if err := w.outboxRepo.MarkPublished(ctx, event.ID, w.now().UTC()); err != nil {
			// Published but unmarked events are delivered again on the next poll.
			w.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
			continue
		}
		w.observe(true)
	}

	if failed == len(events) {
		// Nothing got through; don't spin on the same batch.
		return 0, nil
	}
	return len(events), nil
}

func (w *Worker) observe(ok bool) {
	if w.metrics == nil {
		return
	}
	if ok {
		w.metrics.OutboxPublished.Inc()
	} else {
		w.metrics.OutboxErrors.Inc()
	}
}

// LogPublisher writes events to the log. Used when Redis publishing is off.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
