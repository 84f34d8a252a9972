package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/apikey/service"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// maxGenerateAttempts bounds retries when a freshly generated token value
// collides with an existing row.
const maxGenerateAttempts = 10

// keyUseCase implements KeyUseCase.
type keyUseCase struct {
	keyRepo      KeyRepository
	accountRepo  AccountRepository
	tokenService service.TokenService
}

// NewKeyUseCase creates a new KeyUseCase
func NewKeyUseCase(keyRepo KeyRepository, accountRepo AccountRepository, tokenService service.TokenService) KeyUseCase {
	return &keyUseCase{
		keyRepo:      keyRepo,
		accountRepo:  accountRepo,
		tokenService: tokenService,
	}
}

// Generate creates or rotates the key for an owner login.
//
// The owner must be an existing account. If the owner already holds a key,
// the token value is replaced and created_at refreshed on the same row: id
// and the revoked flag are preserved, so rotating a revoked key does not
// silently re-enable it.
func (k *keyUseCase) Generate(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	account, err := k.accountRepo.GetByLogin(ctx, ownerLogin)
	if err != nil {
		return nil, err
	}

	return k.generateFor(ctx, account)
}

// IssueByEmail creates or rotates the key for the account matching an email.
// Unknown emails surface as not found so the issuance endpoint can report
// them: this mirrors key self-service, where the caller already proved
// control of the mailbox out of band.
func (k *keyUseCase) IssueByEmail(ctx context.Context, email string) (*domain.APIKey, error) {
	account, err := k.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return k.generateFor(ctx, account)
}

func (k *keyUseCase) generateFor(ctx context.Context, account *accountDomain.Account) (*domain.APIKey, error) {
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		tokenValue, err := k.tokenService.GenerateToken()
		if err != nil {
			return nil, err
		}

		key := &domain.APIKey{
			ID:         uuid.Must(uuid.NewV7()),
			OwnerLogin: account.Login,
			OwnerEmail: account.Email,
			TokenValue: tokenValue,
		}

		stored, err := k.keyRepo.CreateOrRotate(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrKeyAlreadyExists) {
				slog.Warn("token value collision, regenerating",
					"owner_login", account.Login,
					"attempt", attempt,
				)
				continue
			}
			return nil, err
		}

		return stored, nil
	}

	return nil, apperrors.New("exhausted token generation attempts")
}

// Authenticate resolves a token value to its owning account.
//
// Failures collapse into ErrInvalidCredentials wherever possible so callers
// cannot distinguish unknown tokens from revoked ones or from tokens whose
// owner disappeared. Storage failures are reported as ErrUnavailable and the
// caller decides how to fail; the HTTP middleware fails closed.
func (k *keyUseCase) Authenticate(ctx context.Context, tokenValue string) (*accountDomain.Account, error) {
	if !domain.ValidTokenFormat(tokenValue) {
		return nil, domain.ErrInvalidCredentials
	}

	key, err := k.keyRepo.GetByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}

	if key.Revoked {
		return nil, domain.ErrKeyRevoked
	}

	account, err := k.accountRepo.GetByLogin(ctx, key.OwnerLogin)
	if err != nil {
		if errors.Is(err, accountDomain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}

	if !account.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	return account, nil
}

// GetForOwner returns the key bound to an owner login
func (k *keyUseCase) GetForOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	return k.keyRepo.GetByOwner(ctx, ownerLogin)
}

// List returns keys ordered newest first
func (k *keyUseCase) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	return k.keyRepo.List(ctx, offset, limit)
}

// Search returns keys matching a substring of the token value or owner login
func (k *keyUseCase) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	return k.keyRepo.Search(ctx, term, offset, limit)
}

// Revoke marks a key as revoked. The row is kept so the key can be restored
// or inspected later.
func (k *keyUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	return k.keyRepo.SetRevoked(ctx, id, true)
}

// Restore clears the revoked flag of a key
func (k *keyUseCase) Restore(ctx context.Context, id uuid.UUID) error {
	return k.keyRepo.SetRevoked(ctx, id, false)
}

// Delete removes a key permanently
func (k *keyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return k.keyRepo.Delete(ctx, id)
}
