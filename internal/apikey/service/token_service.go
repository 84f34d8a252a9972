package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pklabs/keygate/internal/apikey/domain"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// tokenService implements TokenService using crypto/rand.
type tokenService struct{}

// GenerateToken creates a new cryptographically secure random token value.
// The body is hex-encoded so the value is safe in headers, query strings,
// and form fields without escaping.
func (t *tokenService) GenerateToken() (string, error) {
	randomBytes := make([]byte, domain.TokenBodyBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random token")
	}

	return domain.TokenPrefix + hex.EncodeToString(randomBytes), nil
}

// NewTokenService creates a new TokenService instance.
func NewTokenService() TokenService {
	return &tokenService{}
}
