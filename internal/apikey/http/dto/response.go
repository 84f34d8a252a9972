package dto

import (
	"time"

	"github.com/pklabs/keygate/internal/apikey/domain"
)

// KeyResponse represents an API key in API responses. The token value is
// included: keys are stored in recoverable form so operators can re-display
// them, matching the management UI this API backs.
type KeyResponse struct {
	ID         string    `json:"id"`
	OwnerLogin string    `json:"owner_login"`
	OwnerEmail string    `json:"owner_email"`
	TokenValue string    `json:"token_value"`
	Revoked    bool      `json:"revoked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapKeyToResponse converts a domain API key to an API response.
func MapKeyToResponse(key *domain.APIKey) KeyResponse {
	return KeyResponse{
		ID:         key.ID.String(),
		OwnerLogin: key.OwnerLogin,
		OwnerEmail: key.OwnerEmail,
		TokenValue: key.TokenValue,
		Revoked:    key.Revoked,
		CreatedAt:  key.CreatedAt,
		UpdatedAt:  key.UpdatedAt,
	}
}

// ListKeysResponse represents a paginated list of keys in API responses.
type ListKeysResponse struct {
	Data []KeyResponse `json:"data"`
}

// MapKeysToListResponse converts a slice of domain keys to a list API response.
func MapKeysToListResponse(keys []*domain.APIKey) ListKeysResponse {
	keyResponses := make([]KeyResponse, 0, len(keys))
	for _, key := range keys {
		keyResponses = append(keyResponses, MapKeyToResponse(key))
	}
	return ListKeysResponse{
		Data: keyResponses,
	}
}

// IssueTokenResponse contains the result of self-service token issuance:
// the minted credential plus the basic profile of the account it belongs to.
type IssueTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	OwnerLogin  string    `json:"owner_login"`
	OwnerEmail  string    `json:"owner_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapKeyToIssueTokenResponse converts a freshly issued key to the issuance response.
func MapKeyToIssueTokenResponse(key *domain.APIKey) IssueTokenResponse {
	return IssueTokenResponse{
		AccessToken: key.TokenValue,
		TokenType:   "Bearer",
		OwnerLogin:  key.OwnerLogin,
		OwnerEmail:  key.OwnerEmail,
		CreatedAt:   key.CreatedAt,
	}
}
