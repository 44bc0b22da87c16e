package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

// UserRepositoryInterface defines user persistence operations.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UsageMetricsRepositoryInterface defines usage metering persistence.
type UsageMetricsRepositoryInterface interface {
	Insert(ctx context.Context, rec *models.UsageRecord) error
	CurrentMonth(ctx context.Context, userID uuid.UUID) (*models.UsagePeriod, error)
	Daily(ctx context.Context, userID uuid.UUID, days int) ([]models.DailyUsage, error)
}

// QuotaConfigRepositoryInterface defines quota config persistence.
type QuotaConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.QuotaConfig, error)
	Set(ctx context.Context, c *models.QuotaConfig) error
}

var (
	_ UserRepositoryInterface         = (*UserRepository)(nil)
	_ UsageMetricsRepositoryInterface = (*UsageMetricsRepository)(nil)
	_ QuotaConfigRepositoryInterface  = (*QuotaConfigRepository)(nil)
)
