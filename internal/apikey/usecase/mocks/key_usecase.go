// Package mocks provides mock implementations of the key use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/domain"
)

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method of KeyUseCase.
func (m *MockKeyUseCase) Generate(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	args := m.Called(ctx, ownerLogin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// IssueByEmail mocks the IssueByEmail method of KeyUseCase.
func (m *MockKeyUseCase) IssueByEmail(ctx context.Context, email string) (*domain.APIKey, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// Authenticate mocks the Authenticate method of KeyUseCase.
func (m *MockKeyUseCase) Authenticate(ctx context.Context, tokenValue string) (*accountDomain.Account, error) {
	args := m.Called(ctx, tokenValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.Account), args.Error(1)
}

// GetForOwner mocks the GetForOwner method of KeyUseCase.
func (m *MockKeyUseCase) GetForOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	args := m.Called(ctx, ownerLogin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// List mocks the List method of KeyUseCase.
func (m *MockKeyUseCase) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

// Search mocks the Search method of KeyUseCase.
func (m *MockKeyUseCase) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	args := m.Called(ctx, term, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

// Revoke mocks the Revoke method of KeyUseCase.
func (m *MockKeyUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Restore mocks the Restore method of KeyUseCase.
func (m *MockKeyUseCase) Restore(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Delete mocks the Delete method of KeyUseCase.
func (m *MockKeyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
