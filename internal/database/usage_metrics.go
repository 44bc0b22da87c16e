package database

import (
	"context"
	"fmt"
	"time"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/google/uuid"
)

// UsageMetricsRepository handles the usage_metrics table. Rows are
// append-only: Insert is the only write and there is no update or delete,
// so aggregates are always sums over immutable per-call records.
type UsageMetricsRepository struct {
	db *DB
}

// NewUsageMetricsRepository creates a new usage metrics repository
func NewUsageMetricsRepository(db *DB) *UsageMetricsRepository {
	return &UsageMetricsRepository{db: db}
}

// Insert records one metered call
func (r *UsageMetricsRepository) Insert(ctx context.Context, rec *models.UsageRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO usage_metrics (id, user_id, endpoint, input_tokens, output_tokens, total_tokens, duration_ms, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Endpoint,
		rec.InputTokens,
		rec.OutputTokens,
		rec.TotalTokens,
		rec.DurationMs,
		rec.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	return nil
}

// CurrentMonth returns aggregated usage for the user in the current
// calendar month. Zero totals are returned when no records exist.
func (r *UsageMetricsRepository) CurrentMonth(ctx context.Context, userID uuid.UUID) (*models.UsagePeriod, error) {
	period := &models.UsagePeriod{}
	query := `
		SELECT
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COUNT(*)
		FROM usage_metrics
		WHERE user_id = $1
		  AND timestamp >= date_trunc('month', now())
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&period.TotalTokens,
		&period.InputTokens,
		&period.OutputTokens,
		&period.RequestCount,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get current month usage: %w", err)
	}

	return period, nil
}

// Daily returns per-day aggregated usage for the user over the last `days`
// days, newest day first.
func (r *UsageMetricsRepository) Daily(ctx context.Context, userID uuid.UUID, days int) ([]models.DailyUsage, error) {
	query := `
		SELECT
			date_trunc('day', timestamp) AS day,
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COUNT(*)
		FROM usage_metrics
		WHERE user_id = $1
		  AND timestamp >= now() - ($2 * interval '1 day')
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var daily []models.DailyUsage
	for rows.Next() {
		var d models.DailyUsage
		if err := rows.Scan(&d.Day, &d.TotalTokens, &d.InputTokens, &d.OutputTokens, &d.RequestCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		daily = append(daily, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily usage: %w", err)
	}

	return daily, nil
}
