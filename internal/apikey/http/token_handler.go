package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pklabs/keygate/internal/apikey/http/dto"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
	"github.com/pklabs/keygate/internal/httputil"
	customValidation "github.com/pklabs/keygate/internal/validation"
)

// TokenHandler handles the self-service token issuance endpoint.
type TokenHandler struct {
	keyUseCase apikeyUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(keyUseCase apikeyUseCase.KeyUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// IssueTokenHandler issues a token for the account matching an email address.
// POST /oauth/token - No authentication required (this is the credential
// bootstrap endpoint). Returns 201 Created with the token, or 404 when no
// account matches the email.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.keyUseCase.IssueByEmail(c.Request.Context(), req.Email)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyToIssueTokenResponse(key))
}
