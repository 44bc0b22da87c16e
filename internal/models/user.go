package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. ProviderID is the Supabase auth
// subject (the `sub` claim) for users created through Supabase login.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
