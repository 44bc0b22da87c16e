package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/queue"
)

const (
	// directInsertTimeout bounds a fallback insert that runs outside
	// the request lifecycle.
	directInsertTimeout = 5 * time.Second
)

// QueueRecorder publishes usage records to the event queue. Metering is
// best effort: publish failures are logged and dropped so the chat
// response is never held up.
type QueueRecorder struct {
	eventQueue queue.EventQueue
	logger     *zap.Logger
}

// NewQueueRecorder creates a queue-backed usage recorder.
func NewQueueRecorder(eventQueue queue.EventQueue, logger *zap.Logger) *QueueRecorder {
	return &QueueRecorder{eventQueue: eventQueue, logger: logger}
}

// Record enqueues the usage record for asynchronous persistence.
func (r *QueueRecorder) Record(ctx context.Context, rec *models.UsageRecord) {
	event := queue.NewUsageEvent(rec)
	if err := r.eventQueue.Enqueue(ctx, event); err != nil {
		r.logger.Warn("usage_event_enqueue_failed",
			zap.Error(err),
			zap.String("user_id", rec.UserID.String()),
			zap.String("endpoint", rec.Endpoint),
		)
	}
}

// DirectRecorder writes usage records straight to the database from a
// background goroutine. Used when no queue is configured.
type DirectRecorder struct {
	repo   database.UsageMetricsRepositoryInterface
	logger *zap.Logger
}

// NewDirectRecorder creates a database-backed usage recorder.
func NewDirectRecorder(repo database.UsageMetricsRepositoryInterface, logger *zap.Logger) *DirectRecorder {
	return &DirectRecorder{repo: repo, logger: logger}
}

// Record inserts the usage record without blocking the caller. The
// insert survives request cancellation but not process shutdown.
func (r *DirectRecorder) Record(ctx context.Context, rec *models.UsageRecord) {
	go func() {
		insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), directInsertTimeout)
		defer cancel()
		if err := r.repo.Insert(insertCtx, rec); err != nil {
			r.logger.Warn("usage_record_insert_failed",
				zap.Error(err),
				zap.String("user_id", rec.UserID.String()),
			)
		}
	}()
}

// RecorderWorker consumes usage events and persists them.
type RecorderWorker struct {
	eventQueue queue.EventQueue
	repo       database.UsageMetricsRepositoryInterface
	logger     *zap.Logger
	prefetch   int
}

// NewRecorderWorker creates a worker that drains the usage event queue.
func NewRecorderWorker(eventQueue queue.EventQueue, repo database.UsageMetricsRepositoryInterface, logger *zap.Logger, prefetch int) *RecorderWorker {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &RecorderWorker{
		eventQueue: eventQueue,
		repo:       repo,
		logger:     logger,
		prefetch:   prefetch,
	}
}

// Run consumes events until ctx is cancelled or the delivery stream ends.
func (w *RecorderWorker) Run(ctx context.Context) error {
	msgChan, errChan, err := w.eventQueue.Consume(ctx, w.prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming usage events: %w", err)
	}

	w.logger.Info("usage_recorder_started", zap.Int("prefetch", w.prefetch))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			w.logger.Error("usage_event_stream_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle persists one event. A failed insert re-publishes the event with
// an incremented retry count; once retries run out it goes to the DLQ.
func (w *RecorderWorker) handle(ctx context.Context, msg queue.MessageInterface) {
	event := msg.GetEvent()

	if err := w.repo.Insert(ctx, event.Record()); err != nil {
		event.IncrementRetry()
		w.logger.Warn("usage_event_insert_failed",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
			zap.Int("retry_count", event.RetryCount),
		)

		if event.CanRetry() {
			// Re-publish so the bumped retry count sticks, then drop
			// the original delivery.
			if err := w.eventQueue.Enqueue(ctx, event); err != nil {
				w.logger.Error("usage_event_requeue_failed", zap.Error(err))
				if err := msg.Nack(true); err != nil {
					w.logger.Error("usage_event_nack_failed", zap.Error(err))
				}
				return
			}
			if err := msg.Ack(); err != nil {
				w.logger.Error("usage_event_ack_failed", zap.Error(err))
			}
			return
		}

		// Retries exhausted, dead-letter the event.
		if err := msg.Nack(false); err != nil {
			w.logger.Error("usage_event_nack_failed", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		w.logger.Error("usage_event_ack_failed",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return
	}

	w.logger.Debug("usage_event_recorded",
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", event.UserID.String()),
		zap.Int("total_tokens", event.TotalTokens),
	)
}
