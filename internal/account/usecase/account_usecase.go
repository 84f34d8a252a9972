// Package usecase implements business logic orchestration for account operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/account/domain"
)

// UseCase defines the interface for account business logic operations
type UseCase interface {
	Create(ctx context.Context, input *CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByLogin(ctx context.Context, login string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountRepository interface defines account repository operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByLogin(ctx context.Context, login string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// CreateAccountInput holds the data needed to create an account
type CreateAccountInput struct {
	Login        string
	Email        string
	DisplayName  string
	Capabilities []string
}

// accountUseCase implements UseCase.
type accountUseCase struct {
	accountRepo AccountRepository
}

// NewAccountUseCase creates a new account UseCase
func NewAccountUseCase(accountRepo AccountRepository) UseCase {
	return &accountUseCase{
		accountRepo: accountRepo,
	}
}

// Create builds and persists a new active account. Accounts created without
// explicit capabilities get the read capability, the minimum needed for a
// key bound to them to pass authorization.
func (a *accountUseCase) Create(ctx context.Context, input *CreateAccountInput) (*domain.Account, error) {
	capabilities := input.Capabilities
	if len(capabilities) == 0 {
		capabilities = []string{domain.CapabilityRead}
	}

	account := &domain.Account{
		ID:           uuid.Must(uuid.NewV7()),
		Login:        input.Login,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		Capabilities: capabilities,
		IsActive:     true,
	}

	if err := a.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Get retrieves an account by ID
func (a *accountUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return a.accountRepo.GetByID(ctx, id)
}

// GetByLogin retrieves an account by login
func (a *accountUseCase) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	return a.accountRepo.GetByLogin(ctx, login)
}

// GetByEmail retrieves an account by email
func (a *accountUseCase) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return a.accountRepo.GetByEmail(ctx, email)
}
