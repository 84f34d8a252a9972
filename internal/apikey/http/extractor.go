package http

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
)

// Credential sources, in precedence order.
const (
	SourceForm   = "form"
	SourceHeader = "header"
	SourceBearer = "bearer"
	SourceQuery  = "query"
)

// Credential is a sanitized token candidate and the channel it arrived on.
type Credential struct {
	Value  string
	Source string
}

// ExtractCredential pulls a token candidate from the request, checking
// channels in a fixed precedence order:
//
//  1. api_key form field
//  2. X-API-Key header
//  3. Authorization header with a Bearer scheme
//  4. api_key query parameter
//
// The first channel that yields a non-empty value after sanitization wins,
// even if a later channel holds a better-looking candidate. Returns false
// when no channel carries a credential.
func ExtractCredential(c *gin.Context) (Credential, bool) {
	if value := sanitizeCredential(c.PostForm("api_key")); value != "" {
		return Credential{Value: value, Source: SourceForm}, true
	}

	if value := sanitizeCredential(c.GetHeader("X-API-Key")); value != "" {
		return Credential{Value: value, Source: SourceHeader}, true
	}

	if value := sanitizeCredential(bearerToken(c.GetHeader("Authorization"))); value != "" {
		return Credential{Value: value, Source: SourceBearer}, true
	}

	if value := sanitizeCredential(c.Query("api_key")); value != "" {
		return Credential{Value: value, Source: SourceQuery}, true
	}

	return Credential{}, false
}

// bearerToken returns the token part of a Bearer authorization header.
// The scheme comparison is case-insensitive; non-Bearer schemes yield "".
func bearerToken(authHeader string) string {
	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return authHeader[len(bearerPrefix):]
}

// sanitizeCredential strips control characters and surrounding whitespace.
// Letter case is preserved: token comparison is case-sensitive end to end.
func sanitizeCredential(raw string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	return strings.TrimSpace(stripped)
}
