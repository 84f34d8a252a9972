package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/apikey/usecase/mocks"
	"github.com/pklabs/keygate/internal/metrics"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validTestToken(seed string) string {
	return domain.TokenPrefix + strings.Repeat("0", domain.TokenBodyLength-len(seed)) + seed
}

func readerAccount(login string) *accountDomain.Account {
	return &accountDomain.Account{
		Login:        login,
		Email:        login + "@example.com",
		Capabilities: []string{accountDomain.CapabilityRead},
		IsActive:     true,
	}
}

// setupGatedRouter wires routes the way the server does: content routes with a
// public-access policy and a read requirement, admin routes with no bypass and
// a manage_keys requirement.
func setupGatedRouter(useCase *mocks.MockKeyUseCase, policy *PublicAccessPolicy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	noop := metrics.NewNoOpBusinessMetrics()

	router := gin.New()

	content := router.Group("/v1/content")
	content.Use(AuthenticationMiddleware(useCase, policy, noop, logger))
	content.Use(RequireCapability(accountDomain.CapabilityRead, logger))
	content.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	content.GET("/:collection", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"collection": c.Param("collection")})
	})
	content.POST("/:collection", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"collection": c.Param("collection")})
	})

	admin := router.Group("/v1/keys")
	admin.Use(AuthenticationMiddleware(useCase, nil, noop, logger))
	admin.Use(RequireCapability(accountDomain.CapabilityManageKeys, logger))
	admin.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func defaultPolicy() *PublicAccessPolicy {
	return NewPublicAccessPolicy(true, []string{"posts", "pages"})
}

func TestAuthenticationMiddleware_PublicBypass(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"root listing is public", "GET", "/v1/content", http.StatusOK},
		{"public collection", "GET", "/v1/content/posts", http.StatusOK},
		{"other public collection", "GET", "/v1/content/pages", http.StatusOK},
		{"private collection requires credential", "GET", "/v1/content/drafts", http.StatusUnauthorized},
		{"bypass never applies to writes", "POST", "/v1/content/posts", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := &mocks.MockKeyUseCase{}
			router := setupGatedRouter(useCase, defaultPolicy())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			useCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthenticationMiddleware_RootListingTogglesOff(t *testing.T) {
	useCase := &mocks.MockKeyUseCase{}
	router := setupGatedRouter(useCase, NewPublicAccessPolicy(false, []string{"posts"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/content", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationMiddleware_ValidCredential(t *testing.T) {
	token := validTestToken("a1")
	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, token).Return(readerAccount("jdoe"), nil)

	router := setupGatedRouter(useCase, defaultPolicy())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/content/drafts", nil)
	req.Header.Set("X-API-Key", token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	useCase.AssertExpectations(t)
}

func TestAuthenticationMiddleware_MalformedCredentialSkipsStore(t *testing.T) {
	useCase := &mocks.MockKeyUseCase{}
	router := setupGatedRouter(useCase, defaultPolicy())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/content/drafts", nil)
	req.Header.Set("X-API-Key", "definitely-not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	useCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestAuthenticationMiddleware_RejectionBodiesAreIdentical(t *testing.T) {
	revokedToken := validTestToken("b1")
	unknownToken := validTestToken("b2")

	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, revokedToken).Return(nil, domain.ErrKeyRevoked)
	useCase.On("Authenticate", mock.Anything, unknownToken).Return(nil, domain.ErrInvalidCredentials)

	router := setupGatedRouter(useCase, defaultPolicy())

	bodies := map[string]string{}
	for name, header := range map[string]string{
		"absent":    "",
		"malformed": "nope",
		"revoked":   revokedToken,
		"unknown":   unknownToken,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/v1/content/drafts", nil)
		if header != "" {
			req.Header.Set("X-API-Key", header)
		}
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		bodies[name] = w.Body.String()
	}

	// Same status, same body: the caller cannot tell why it was rejected
	for name, body := range bodies {
		assert.Equal(t, bodies["absent"], body, name)
	}
}

func TestAuthenticationMiddleware_StorageFailureFailsClosed(t *testing.T) {
	token := validTestToken("c1")
	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, token).
		Return(nil, apperrors.Wrap(apperrors.ErrUnavailable, "connection refused"))

	router := setupGatedRouter(useCase, defaultPolicy())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/content/drafts", nil)
	req.Header.Set("X-API-Key", token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationMiddleware_ExistingIdentityShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	useCase := &mocks.MockKeyUseCase{}
	logger := testLogger()
	noop := metrics.NewNoOpBusinessMetrics()

	router := gin.New()
	// Simulates an upstream identity layer (e.g. a session) running first
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithAccount(c.Request.Context(), readerAccount("session-user")))
		c.Next()
	})
	router.Use(AuthenticationMiddleware(useCase, nil, noop, logger))
	router.Use(RequireCapability(accountDomain.CapabilityRead, logger))
	router.GET("/v1/content/drafts", func(c *gin.Context) {
		account, ok := GetAccount(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"login": account.Login})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/content/drafts", nil)
	// A credential is present but must be ignored for an identified request
	req.Header.Set("X-API-Key", validTestToken("d1"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session-user")
	useCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestRequireCapability_MissingCapability(t *testing.T) {
	token := validTestToken("e1")
	account := readerAccount("jdoe") // read only, no manage_keys

	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, token).Return(account, nil)

	router := setupGatedRouter(useCase, defaultPolicy())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/keys", nil)
	req.Header.Set("X-API-Key", token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapability_AdminAccess(t *testing.T) {
	token := validTestToken("e2")
	account := readerAccount("admin")
	account.Capabilities = append(account.Capabilities, accountDomain.CapabilityManageKeys)

	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, token).Return(account, nil)

	router := setupGatedRouter(useCase, defaultPolicy())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationMiddleware_FormCredential(t *testing.T) {
	token := validTestToken("f1")
	useCase := &mocks.MockKeyUseCase{}
	useCase.On("Authenticate", mock.Anything, token).Return(readerAccount("jdoe"), nil)

	router := setupGatedRouter(useCase, defaultPolicy())

	form := url.Values{"api_key": {token}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/content/posts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}
