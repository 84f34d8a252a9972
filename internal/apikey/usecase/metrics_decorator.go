package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/metrics"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "apikey", operation, status)
	k.metrics.RecordDuration(ctx, "apikey", operation, time.Since(start), status)
}

// Generate records metrics for key generation operations.
func (k *keyUseCaseWithMetrics) Generate(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	start := time.Now()
	key, err := k.next.Generate(ctx, ownerLogin)
	k.record(ctx, "generate", start, err)
	return key, err
}

// IssueByEmail records metrics for issuance operations.
func (k *keyUseCaseWithMetrics) IssueByEmail(ctx context.Context, email string) (*domain.APIKey, error) {
	start := time.Now()
	key, err := k.next.IssueByEmail(ctx, email)
	k.record(ctx, "issue_by_email", start, err)
	return key, err
}

// Authenticate records metrics for authentication attempts, broken down by
// outcome rather than a bare success/error pair.
func (k *keyUseCaseWithMetrics) Authenticate(ctx context.Context, tokenValue string) (*accountDomain.Account, error) {
	start := time.Now()
	account, err := k.next.Authenticate(ctx, tokenValue)

	status := authenticateStatus(err)
	k.metrics.RecordOperation(ctx, "apikey", "authenticate", status)
	k.metrics.RecordDuration(ctx, "apikey", "authenticate", time.Since(start), status)

	return account, err
}

func authenticateStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrKeyRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "not_found"
	case errors.Is(err, apperrors.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// GetForOwner records metrics for owner lookups.
func (k *keyUseCaseWithMetrics) GetForOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	start := time.Now()
	key, err := k.next.GetForOwner(ctx, ownerLogin)
	k.record(ctx, "get_for_owner", start, err)
	return key, err
}

// List records metrics for list operations.
func (k *keyUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	start := time.Now()
	keys, err := k.next.List(ctx, offset, limit)
	k.record(ctx, "list", start, err)
	return keys, err
}

// Search records metrics for search operations.
func (k *keyUseCaseWithMetrics) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	start := time.Now()
	keys, err := k.next.Search(ctx, term, offset, limit)
	k.record(ctx, "search", start, err)
	return keys, err
}

// Revoke records metrics for revocation operations.
func (k *keyUseCaseWithMetrics) Revoke(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.Revoke(ctx, id)
	k.record(ctx, "revoke", start, err)
	return err
}

// Restore records metrics for restore operations.
func (k *keyUseCaseWithMetrics) Restore(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.Restore(ctx, id)
	k.record(ctx, "restore", start, err)
	return err
}

// Delete records metrics for delete operations.
func (k *keyUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.Delete(ctx, id)
	k.record(ctx, "delete", start, err)
	return err
}
