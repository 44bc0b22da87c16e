package handlers

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

type fakeUsageRepo struct {
	month      *models.UsagePeriod
	daily      []models.DailyUsage
	monthErr   error
	dailyErr   error
	gotUserID  uuid.UUID
	gotDays    int
	insertRecs []*models.UsageRecord
}

func (r *fakeUsageRepo) Insert(ctx context.Context, rec *models.UsageRecord) error {
	r.insertRecs = append(r.insertRecs, rec)
	return nil
}

func (r *fakeUsageRepo) CurrentMonth(ctx context.Context, userID uuid.UUID) (*models.UsagePeriod, error) {
	r.gotUserID = userID
	if r.monthErr != nil {
		return nil, r.monthErr
	}
	return r.month, nil
}

func (r *fakeUsageRepo) Daily(ctx context.Context, userID uuid.UUID, days int) ([]models.DailyUsage, error) {
	r.gotDays = days
	if r.dailyErr != nil {
		return nil, r.dailyErr
	}
	return r.daily, nil
}

func TestUsageHandler_Unauthorized(t *testing.T) {
	t.Parallel()

	handler := NewUsageHandler(&fakeUsageRepo{}, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/usage", nil)
	w := httptest.NewRecorder()
	handler.Usage(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
	if got := decodeError(t, w); got != "Unauthorized" {
		t.Errorf("Unexpected error message: %q", got)
	}
}

func TestUsageHandler_Success(t *testing.T) {
	t.Parallel()

	repo := &fakeUsageRepo{
		month: &models.UsagePeriod{TotalTokens: 4600, RequestCount: 12},
		daily: []models.DailyUsage{
			{Day: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), TotalTokens: 300, RequestCount: 2},
		},
	}
	handler := NewUsageHandler(repo, zap.NewNop())

	user := &models.User{ID: uuid.New()}
	req := httptest.NewRequest("GET", "/api/usage", nil)
	req = req.WithContext(request.WithUser(req.Context(), user))
	w := httptest.NewRecorder()
	handler.Usage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	var body UsageResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.CurrentMonth == nil || body.CurrentMonth.TotalTokens != 4600 {
		t.Errorf("Unexpected currentMonth: %+v", body.CurrentMonth)
	}
	if len(body.DailyUsage) != 1 {
		t.Fatalf("Expected 1 daily entry, got %d", len(body.DailyUsage))
	}

	if repo.gotUserID != user.ID {
		t.Error("Expected queries scoped to the requesting user")
	}
	if repo.gotDays != dailyUsageDays {
		t.Errorf("Expected %d-day window, got %d", dailyUsageDays, repo.gotDays)
	}
}

func TestUsageHandler_EmptyDailyIsArray(t *testing.T) {
	t.Parallel()

	repo := &fakeUsageRepo{month: &models.UsagePeriod{}}
	handler := NewUsageHandler(repo, zap.NewNop())

	user := &models.User{ID: uuid.New()}
	req := httptest.NewRequest("GET", "/api/usage", nil)
	req = req.WithContext(request.WithUser(req.Context(), user))
	w := httptest.NewRecorder()
	handler.Usage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(raw["dailyUsage"]) != "[]" {
		t.Errorf("Expected empty array for dailyUsage, got %s", raw["dailyUsage"])
	}
}

func TestUsageHandler_QueryError(t *testing.T) {
	t.Parallel()

	repo := &fakeUsageRepo{monthErr: errors.New("db down")}
	handler := NewUsageHandler(repo, zap.NewNop())

	user := &models.User{ID: uuid.New()}
	req := httptest.NewRequest("GET", "/api/usage", nil)
	req = req.WithContext(request.WithUser(req.Context(), user))
	w := httptest.NewRecorder()
	handler.Usage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if got := decodeError(t, w); got != "Failed to fetch usage data" {
		t.Errorf("Unexpected error message: %q", got)
	}
}
