package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/request"
)

type fakeQuotaStore struct {
	counts   map[string]int64
	countErr error
	incrErr  error
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{counts: make(map[string]int64)}
}

func (s *fakeQuotaStore) Count(ctx context.Context, key string) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.counts[key], nil
}

func (s *fakeQuotaStore) Incr(ctx context.Context, key string, ttl time.Duration) error {
	if s.incrErr != nil {
		return s.incrErr
	}
	s.counts[key]++
	return nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestQuota(store QuotaStore) *ChatQuota {
	q := NewChatQuota(store, nil, zap.NewNop(), 0)
	q.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return q
}

func TestChatQuota_UnderLimit(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	q := newTestQuota(store)
	handler := q.Middleware()(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	key := q.Key("203.0.113.7", q.now())
	if store.counts[key] != 1 {
		t.Errorf("Expected counter 1 for %s, got %d", key, store.counts[key])
	}
}

func TestChatQuota_AtLimit(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	q := newTestQuota(store)
	key := q.Key("203.0.113.7", q.now())
	store.counts[key] = DefaultDailyQuota

	handler := q.Middleware()(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Error != QuotaExceededMessage {
		t.Errorf("Expected fixed quota message, got '%s'", body.Error)
	}

	// A rejected request must not consume quota.
	if store.counts[key] != DefaultDailyQuota {
		t.Errorf("Expected counter unchanged at %d, got %d", DefaultDailyQuota, store.counts[key])
	}
}

func TestChatQuota_ExactlyLimitRequestsAdmitted(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	q := newTestQuota(store)
	handler := q.Middleware()(okHandler())

	for i := 0; i < DefaultDailyQuota; i++ {
		req := httptest.NewRequest("POST", "/api/chat", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.9")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Request %d: expected status 429, got %d", DefaultDailyQuota+1, w.Code)
	}
}

func TestChatQuota_AuthenticatedBypass(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	q := newTestQuota(store)
	key := q.Key("203.0.113.7", q.now())
	store.counts[key] = DefaultDailyQuota + 10

	handler := q.Middleware()(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	user := &models.User{ID: uuid.New(), Email: "a@example.com"}
	req = req.WithContext(request.WithUser(req.Context(), user))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for authenticated user, got %d", w.Code)
	}
	if store.counts[key] != DefaultDailyQuota+10 {
		t.Errorf("Expected counter unchanged for authenticated user, got %d", store.counts[key])
	}
}

func TestChatQuota_UnknownIPAdmitted(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	q := newTestQuota(store)
	handler := q.Middleware()(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.RemoteAddr = ""
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for unknown IP, got %d", w.Code)
	}
	if len(store.counts) != 0 {
		t.Errorf("Expected no counters for unknown IP, got %v", store.counts)
	}
}

func TestChatQuota_StoreErrorFailsOpen(t *testing.T) {
	t.Parallel()

	store := newFakeQuotaStore()
	store.countErr = errors.New("redis down")
	q := newTestQuota(store)
	handler := q.Middleware()(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 when store is down, got %d", w.Code)
	}
}

func TestChatQuota_KeyRotatesDaily(t *testing.T) {
	t.Parallel()

	q := newTestQuota(newFakeQuotaStore())

	day1 := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 16, 0, 1, 0, 0, time.UTC)

	k1 := q.Key("203.0.113.7", day1)
	k2 := q.Key("203.0.113.7", day2)

	if k1 == k2 {
		t.Errorf("Expected distinct keys across day boundary, got %s", k1)
	}
	if k1 != "chat_quota:203.0.113.7:2025-06-15" {
		t.Errorf("Unexpected key format: %s", k1)
	}
}

func TestChatQuota_KeyUsesUTC(t *testing.T) {
	t.Parallel()

	q := newTestQuota(newFakeQuotaStore())

	// 01:00 in Nairobi on the 16th is still the 15th in UTC.
	nairobi := time.FixedZone("EAT", 3*3600)
	at := time.Date(2025, 6, 16, 1, 0, 0, 0, nairobi)

	if got := q.Key("203.0.113.7", at); got != "chat_quota:203.0.113.7:2025-06-15" {
		t.Errorf("Expected UTC-dated key, got %s", got)
	}
}
