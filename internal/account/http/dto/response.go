package dto

import (
	"time"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Capabilities []string  `json:"capabilities"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapAccountToResponse converts a domain account to an API response.
func MapAccountToResponse(account *accountDomain.Account) AccountResponse {
	return AccountResponse{
		ID:           account.ID.String(),
		Login:        account.Login,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		Capabilities: account.Capabilities,
		IsActive:     account.IsActive,
		CreatedAt:    account.CreatedAt,
	}
}
