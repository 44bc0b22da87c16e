package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

// UsageEvent is a usage metering record in flight between the API and
// the worker that persists it.
type UsageEvent struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
	CreatedAt    time.Time `json:"created_at"`
	RetryCount   int       `json:"retry_count"`
	MaxRetries   int       `json:"max_retries"`
}

// NewUsageEvent wraps a usage record for queueing.
func NewUsageEvent(rec *models.UsageRecord) *UsageEvent {
	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &UsageEvent{
		ID:           id,
		UserID:       rec.UserID,
		Endpoint:     rec.Endpoint,
		InputTokens:  rec.InputTokens,
		OutputTokens: rec.OutputTokens,
		TotalTokens:  rec.TotalTokens,
		DurationMs:   rec.DurationMs,
		Timestamp:    rec.Timestamp,
		CreatedAt:    time.Now(),
		RetryCount:   0,
		MaxRetries:   3,
	}
}

// Record converts the event back into the usage record to persist.
func (e *UsageEvent) Record() *models.UsageRecord {
	return &models.UsageRecord{
		ID:           e.ID,
		UserID:       e.UserID,
		Endpoint:     e.Endpoint,
		InputTokens:  e.InputTokens,
		OutputTokens: e.OutputTokens,
		TotalTokens:  e.TotalTokens,
		DurationMs:   e.DurationMs,
		Timestamp:    e.Timestamp,
	}
}

// CanRetry checks if the event can be retried
func (e *UsageEvent) CanRetry() bool {
	return e.RetryCount < e.MaxRetries
}

// IncrementRetry increments the retry count
func (e *UsageEvent) IncrementRetry() {
	e.RetryCount++
}
