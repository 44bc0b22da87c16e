package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/queue"
)

type fakeEventQueue struct {
	enqueued   []*queue.UsageEvent
	enqueueErr error
}

func (q *fakeEventQueue) Enqueue(ctx context.Context, event *queue.UsageEvent) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, event)
	return nil
}

func (q *fakeEventQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (q *fakeEventQueue) Close() error                          { return nil }
func (q *fakeEventQueue) HealthCheck(ctx context.Context) error { return nil }

type fakeMetricsRepo struct {
	inserted  []*models.UsageRecord
	insertErr error
}

func (r *fakeMetricsRepo) Insert(ctx context.Context, rec *models.UsageRecord) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, rec)
	return nil
}

func (r *fakeMetricsRepo) CurrentMonth(ctx context.Context, userID uuid.UUID) (*models.UsagePeriod, error) {
	return &models.UsagePeriod{}, nil
}

func (r *fakeMetricsRepo) Daily(ctx context.Context, userID uuid.UUID, days int) ([]models.DailyUsage, error) {
	return nil, nil
}

type fakeMessage struct {
	event    *queue.UsageEvent
	acked    bool
	nacked   bool
	requeued bool
}

func (m *fakeMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *fakeMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	return nil
}

func (m *fakeMessage) GetEvent() *queue.UsageEvent { return m.event }

func testRecord() *models.UsageRecord {
	return &models.UsageRecord{
		UserID:       uuid.New(),
		Endpoint:     "/api/chat",
		InputTokens:  100,
		OutputTokens: 200,
		TotalTokens:  300,
		DurationMs:   500,
		Timestamp:    time.Now(),
	}
}

func TestQueueRecorder_Record(t *testing.T) {
	t.Parallel()

	q := &fakeEventQueue{}
	recorder := NewQueueRecorder(q, zap.NewNop())

	rec := testRecord()
	recorder.Record(context.Background(), rec)

	if len(q.enqueued) != 1 {
		t.Fatalf("Expected 1 event enqueued, got %d", len(q.enqueued))
	}
	if q.enqueued[0].UserID != rec.UserID {
		t.Error("Expected event to carry the record's user ID")
	}
}

func TestQueueRecorder_EnqueueErrorDropped(t *testing.T) {
	t.Parallel()

	q := &fakeEventQueue{enqueueErr: errors.New("broker down")}
	recorder := NewQueueRecorder(q, zap.NewNop())

	// Must not panic or block; metering is best effort.
	recorder.Record(context.Background(), testRecord())
}

func TestDirectRecorder_Record(t *testing.T) {
	t.Parallel()

	repo := &fakeMetricsRepo{}
	recorder := NewDirectRecorder(repo, zap.NewNop())

	recorder.Record(context.Background(), testRecord())

	// The insert runs on a goroutine; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for len(repo.inserted) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("Expected 1 record inserted, got %d", len(repo.inserted))
	}
}

func TestDirectRecorder_SurvivesCancelledContext(t *testing.T) {
	t.Parallel()

	repo := &fakeMetricsRepo{}
	recorder := NewDirectRecorder(repo, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recorder.Record(ctx, testRecord())

	deadline := time.Now().Add(2 * time.Second)
	for len(repo.inserted) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("Expected insert despite cancelled request context, got %d", len(repo.inserted))
	}
}

func TestRecorderWorker_HandleSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeMetricsRepo{}
	q := &fakeEventQueue{}
	worker := NewRecorderWorker(q, repo, zap.NewNop(), 1)

	msg := &fakeMessage{event: queue.NewUsageEvent(testRecord())}
	worker.handle(context.Background(), msg)

	if len(repo.inserted) != 1 {
		t.Fatalf("Expected 1 record inserted, got %d", len(repo.inserted))
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
	if msg.nacked {
		t.Error("Expected message not to be nacked")
	}
}

func TestRecorderWorker_HandleInsertFailureRetries(t *testing.T) {
	t.Parallel()

	repo := &fakeMetricsRepo{insertErr: errors.New("db down")}
	q := &fakeEventQueue{}
	worker := NewRecorderWorker(q, repo, zap.NewNop(), 1)

	msg := &fakeMessage{event: queue.NewUsageEvent(testRecord())}
	worker.handle(context.Background(), msg)

	if len(q.enqueued) != 1 {
		t.Fatalf("Expected event re-published for retry, got %d", len(q.enqueued))
	}
	if q.enqueued[0].RetryCount != 1 {
		t.Errorf("Expected retry count 1 on re-published event, got %d", q.enqueued[0].RetryCount)
	}
	if !msg.acked {
		t.Error("Expected original delivery acked after re-publish")
	}
}

func TestRecorderWorker_HandleRetriesExhausted(t *testing.T) {
	t.Parallel()

	repo := &fakeMetricsRepo{insertErr: errors.New("db down")}
	q := &fakeEventQueue{}
	worker := NewRecorderWorker(q, repo, zap.NewNop(), 1)

	event := queue.NewUsageEvent(testRecord())
	event.RetryCount = event.MaxRetries - 1

	msg := &fakeMessage{event: event}
	worker.handle(context.Background(), msg)

	if len(q.enqueued) != 0 {
		t.Errorf("Expected no re-publish once retries are exhausted, got %d", len(q.enqueued))
	}
	if !msg.nacked || msg.requeued {
		t.Error("Expected message dead-lettered (nack without requeue)")
	}
}
