package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one row per metered API call. Records are append-only:
// they are inserted once and never updated, so period totals are always
// the sum of per-call rows.
type UsageRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// UsagePeriod holds aggregated usage for a reporting period.
type UsagePeriod struct {
	TotalTokens  int64 `json:"total_tokens"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	RequestCount int64 `json:"request_count"`
}

// DailyUsage holds aggregated usage for a single calendar day.
type DailyUsage struct {
	Day          time.Time `json:"day"`
	TotalTokens  int64     `json:"total_tokens"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	RequestCount int64     `json:"request_count"`
}
