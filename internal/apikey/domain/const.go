package domain

// Token format constants. A token is the literal prefix followed by a
// fixed-length lowercase hex body, e.g. pkl_3f2a...9c.
const (
	// TokenPrefix is prepended to every generated token value.
	TokenPrefix = "pkl_"

	// TokenBodyBytes is the number of random bytes behind the hex body.
	TokenBodyBytes = 32

	// TokenBodyLength is the length of the hex-encoded body.
	TokenBodyLength = TokenBodyBytes * 2

	// TokenLength is the total length of a well-formed token value.
	TokenLength = len(TokenPrefix) + TokenBodyLength
)
