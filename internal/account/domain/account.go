package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/errors"
)

var (
	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")

	// ErrAccountAlreadyExists indicates an account with the same login or email already exists.
	ErrAccountAlreadyExists = errors.Wrap(errors.ErrConflict, "account already exists")
)

// Capabilities recognized by the authorization layer.
const (
	CapabilityRead       = "read"
	CapabilityManageKeys = "manage_keys"
)

// Account represents a user that API keys can be bound to.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Capabilities []string  `json:"capabilities"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Can reports whether the account holds the given capability.
func (a *Account) Can(capability string) bool {
	for _, c := range a.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
