package domain

import "strings"

// ValidTokenFormat reports whether a candidate string has the shape of a
// generated token: the literal prefix followed by a lowercase hex body of
// the expected length. Candidates that fail this check can be rejected
// without touching storage.
func ValidTokenFormat(candidate string) bool {
	if len(candidate) != TokenLength {
		return false
	}
	if !strings.HasPrefix(candidate, TokenPrefix) {
		return false
	}
	for _, c := range candidate[len(TokenPrefix):] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
