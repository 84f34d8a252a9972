// Package domain defines the core API key entities and errors.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKey binds a bearer token value to an account.
// Each account holds at most one key; rotation replaces the value in place.
type APIKey struct {
	ID         uuid.UUID `json:"id"`
	OwnerLogin string    `json:"owner_login"`
	OwnerEmail string    `json:"owner_email"`
	TokenValue string    `json:"token_value"`
	Revoked    bool      `json:"revoked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsUsable reports whether the key can authenticate requests.
func (k *APIKey) IsUsable() bool {
	return !k.Revoked
}
