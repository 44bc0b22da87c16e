package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

const defaultQuotaConfigKey = "default"

// QuotaConfigRepository handles the anonymous daily chat quota
// configuration in the database.
type QuotaConfigRepository struct {
	db *DB
}

// NewQuotaConfigRepository creates a new quota config repository.
func NewQuotaConfigRepository(db *DB) *QuotaConfigRepository {
	return &QuotaConfigRepository{db: db}
}

// Get retrieves the default quota config. Returns nil when none exists.
func (r *QuotaConfigRepository) Get(ctx context.Context) (*models.QuotaConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, daily_limit, created_at, updated_at
		FROM quota_config WHERE config_key = $1
	`, defaultQuotaConfigKey)
	c := &models.QuotaConfig{}
	err := row.Scan(&c.ConfigKey, &c.DailyLimit, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quota config: %w", err)
	}
	return c, nil
}

// Set upserts the default quota config.
func (r *QuotaConfigRepository) Set(ctx context.Context, c *models.QuotaConfig) error {
	if c.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be positive")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quota_config (config_key, daily_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			daily_limit = EXCLUDED.daily_limit,
			updated_at = EXCLUDED.updated_at
	`, defaultQuotaConfigKey, c.DailyLimit, now, now)
	if err != nil {
		return fmt.Errorf("set quota config: %w", err)
	}
	return nil
}
