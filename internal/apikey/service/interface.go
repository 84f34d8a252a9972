// Package service provides technical services for API key generation.
package service

// TokenService defines operations for API key token generation.
// Implementations must use cryptographically secure random generation.
type TokenService interface {
	// GenerateToken creates a new random token value in the canonical
	// format: the literal prefix followed by a lowercase hex body.
	//
	// The token is stored and re-displayed as-is, so callers must treat
	// the returned value as sensitive data.
	GenerateToken() (string, error)
}
