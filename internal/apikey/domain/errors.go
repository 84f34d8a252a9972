package domain

import (
	"github.com/pklabs/keygate/internal/errors"
)

// API key errors.
var (
	// ErrKeyNotFound indicates no key matches the given id, owner, or token value.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrKeyAlreadyExists indicates a key with the same token value already exists.
	ErrKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "api key already exists")

	// ErrKeyRevoked indicates the key matched but has been revoked.
	ErrKeyRevoked = errors.Wrap(errors.ErrUnauthorized, "api key revoked")

	// ErrInvalidCredentials indicates the presented credential failed authentication.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
)
