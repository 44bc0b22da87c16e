package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/request"
)

// dailyUsageDays is how far back the per-day usage breakdown reaches.
const dailyUsageDays = 30

// UsageHandler serves usage metrics for signed-in users
type UsageHandler struct {
	repo   database.UsageMetricsRepositoryInterface
	logger *zap.Logger
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(repo database.UsageMetricsRepositoryInterface, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{repo: repo, logger: logger}
}

// UsageResponse is the success body for GET /api/usage.
type UsageResponse struct {
	CurrentMonth *models.UsagePeriod `json:"currentMonth"`
	DailyUsage   []models.DailyUsage `json:"dailyUsage"`
}

// Usage handles GET /api/usage
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx := r.Context()

	currentMonth, err := h.repo.CurrentMonth(ctx, user.ID)
	if err != nil {
		h.logger.Error("usage_current_month_query_failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		respondError(w, http.StatusInternalServerError, "Failed to fetch usage data")
		return
	}

	daily, err := h.repo.Daily(ctx, user.ID, dailyUsageDays)
	if err != nil {
		h.logger.Error("usage_daily_query_failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		respondError(w, http.StatusInternalServerError, "Failed to fetch usage data")
		return
	}

	if daily == nil {
		daily = []models.DailyUsage{}
	}

	respondJSON(w, http.StatusOK, UsageResponse{
		CurrentMonth: currentMonth,
		DailyUsage:   daily,
	})
}
