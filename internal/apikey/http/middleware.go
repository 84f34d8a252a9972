package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pklabs/keygate/internal/apikey/domain"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
	apperrors "github.com/pklabs/keygate/internal/errors"
	"github.com/pklabs/keygate/internal/httputil"
	"github.com/pklabs/keygate/internal/metrics"
)

// PublicAccessPolicy names the read-only resources anonymous requests may
// reach. Only GET requests ever qualify; everything else always requires a
// credential.
type PublicAccessPolicy struct {
	rootListing bool
	collections map[string]struct{}
}

// NewPublicAccessPolicy creates a policy allowing anonymous GETs of the
// content root listing (when rootListing is set) and of the named collections.
func NewPublicAccessPolicy(rootListing bool, collections []string) *PublicAccessPolicy {
	set := make(map[string]struct{}, len(collections))
	for _, collection := range collections {
		set[collection] = struct{}{}
	}
	return &PublicAccessPolicy{
		rootListing: rootListing,
		collections: set,
	}
}

// AllowAnonymous reports whether the request may proceed without a credential.
func (p *PublicAccessPolicy) AllowAnonymous(c *gin.Context) bool {
	if p == nil || c.Request.Method != http.MethodGet {
		return false
	}

	switch c.FullPath() {
	case "/v1/content":
		return p.rootListing
	case "/v1/content/:collection":
		_, ok := p.collections[c.Param("collection")]
		return ok
	default:
		return false
	}
}

// AuthenticationMiddleware authenticates requests with an API key.
//
// The decision sequence:
//  1. A request that already carries an authenticated account passes through
//     untouched, and the public-access bypass is never consulted for it.
//  2. Anonymous GETs of resources the policy marks public pass through
//     without an account in the context.
//  3. Otherwise a credential is extracted from the request. An absent or
//     malformed credential is rejected without touching storage.
//  4. The credential is authenticated; on success the account is stored in
//     the request context for downstream handlers.
//
// Every rejection is a 401 with the same generic body, so callers cannot
// probe which stage failed. Storage trouble also rejects: an unreachable
// store never lets a request through.
func AuthenticationMiddleware(
	keyUseCase apikeyUseCase.KeyUseCase,
	policy *PublicAccessPolicy,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if _, ok := GetAccount(ctx); ok {
			c.Next()
			return
		}

		if policy.AllowAnonymous(c) {
			c.Next()
			return
		}

		credential, found := ExtractCredential(c)
		if !found {
			logger.Debug("authentication failed: no credential presented",
				slog.String("path", c.Request.URL.Path))
			businessMetrics.RecordOperation(ctx, "apikey", "authenticate", "absent")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !domain.ValidTokenFormat(credential.Value) {
			logger.Debug("authentication failed: malformed credential",
				slog.String("source", credential.Source))
			businessMetrics.RecordOperation(ctx, "apikey", "authenticate", "malformed")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		account, err := keyUseCase.Authenticate(ctx, credential.Value)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("source", credential.Source),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAccount(ctx, account))
		c.Next()
	}
}

// RequireCapability rejects authenticated requests whose account lacks the
// given capability. Requests that reached this middleware anonymously via a
// public-access bypass pass through: the bypass already scoped what they can
// see.
func RequireCapability(capability string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccount(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		if !account.Can(capability) {
			logger.Debug("authorization failed: missing capability",
				slog.String("login", account.Login),
				slog.String("capability", capability))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
