package models

import "time"

// RatelimitConfig is the transport-level rate limit configuration stored in
// the database. Rate uses ulule/limiter's formatted notation (e.g. "5-S",
// "100-M").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
