package models

import "time"

// QuotaConfig is the anonymous chat quota configuration stored in the
// database: how many chat requests an unauthenticated IP may make per
// calendar day before being asked to sign in.
type QuotaConfig struct {
	ConfigKey  string    `json:"config_key"`
	DailyLimit int       `json:"daily_limit"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
