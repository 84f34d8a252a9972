// Package usecase implements business logic orchestration for API key operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/domain"
)

// KeyUseCase defines the interface for API key business logic operations
type KeyUseCase interface {
	// Generate creates a key for the given owner login, rotating the token
	// value in place when the owner already has one.
	Generate(ctx context.Context, ownerLogin string) (*domain.APIKey, error)

	// IssueByEmail creates or rotates a key for the account matching the
	// given email address.
	IssueByEmail(ctx context.Context, email string) (*domain.APIKey, error)

	// Authenticate resolves a presented token value to its owning account.
	Authenticate(ctx context.Context, tokenValue string) (*accountDomain.Account, error)

	// GetForOwner returns the key bound to the given owner login.
	GetForOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error)

	// List returns keys ordered newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)

	// Search returns keys whose token value or owner login contains the term.
	Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error)

	// Revoke marks a key as revoked without discarding it.
	Revoke(ctx context.Context, id uuid.UUID) error

	// Restore clears the revoked flag of a key.
	Restore(ctx context.Context, id uuid.UUID) error

	// Delete removes a key permanently.
	Delete(ctx context.Context, id uuid.UUID) error
}

// KeyRepository interface defines API key repository operations
type KeyRepository interface {
	CreateOrRotate(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error)
	GetByValue(ctx context.Context, value string) (*domain.APIKey, error)
	GetByOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error)
	List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)
	Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error)
	SetRevoked(ctx context.Context, id uuid.UUID, revoked bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountRepository interface defines the account lookups key operations need
type AccountRepository interface {
	GetByLogin(ctx context.Context, login string) (*accountDomain.Account, error)
	GetByEmail(ctx context.Context, email string) (*accountDomain.Account, error)
}
