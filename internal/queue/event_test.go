package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

func TestNewUsageEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	rec := &models.UsageRecord{
		UserID:       userID,
		Endpoint:     "/api/chat",
		InputTokens:  120,
		OutputTokens: 340,
		TotalTokens:  460,
		DurationMs:   842,
		Timestamp:    time.Now(),
	}

	event := NewUsageEvent(rec)

	if event.ID == uuid.Nil {
		t.Error("Expected event ID to be set")
	}
	if event.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, event.UserID)
	}
	if event.Endpoint != "/api/chat" {
		t.Errorf("Expected endpoint /api/chat, got %s", event.Endpoint)
	}
	if event.TotalTokens != 460 {
		t.Errorf("Expected total tokens 460, got %d", event.TotalTokens)
	}
	if event.RetryCount != 0 {
		t.Errorf("Expected retry count 0, got %d", event.RetryCount)
	}
	if event.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", event.MaxRetries)
	}
	if event.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestNewUsageEvent_KeepsExistingID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	event := NewUsageEvent(&models.UsageRecord{ID: id, UserID: uuid.New()})
	if event.ID != id {
		t.Errorf("Expected event to keep record ID %s, got %s", id, event.ID)
	}
}

func TestUsageEvent_RoundTrip(t *testing.T) {
	t.Parallel()

	rec := &models.UsageRecord{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Endpoint:     "/api/chat",
		InputTokens:  10,
		OutputTokens: 20,
		TotalTokens:  30,
		DurationMs:   150,
		Timestamp:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	got := NewUsageEvent(rec).Record()

	if got.ID != rec.ID || got.UserID != rec.UserID {
		t.Error("Expected identifiers preserved through the queue")
	}
	if got.InputTokens != 10 || got.OutputTokens != 20 || got.TotalTokens != 30 {
		t.Error("Expected token counts preserved through the queue")
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Error("Expected timestamp preserved through the queue")
	}
}

func TestUsageEvent_Retry(t *testing.T) {
	t.Parallel()

	event := NewUsageEvent(&models.UsageRecord{UserID: uuid.New()})

	for i := 0; i < event.MaxRetries; i++ {
		if !event.CanRetry() {
			t.Fatalf("Expected CanRetry true at retry count %d", event.RetryCount)
		}
		event.IncrementRetry()
	}
	if event.CanRetry() {
		t.Errorf("Expected CanRetry false at retry count %d", event.RetryCount)
	}
}
