// Package http provides HTTP handlers for account management operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/account/http/dto"
	accountUseCase "github.com/pklabs/keygate/internal/account/usecase"
	"github.com/pklabs/keygate/internal/httputil"
	customValidation "github.com/pklabs/keygate/internal/validation"
)

// AccountHandler handles HTTP requests for account management operations.
type AccountHandler struct {
	accountUseCase accountUseCase.UseCase
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler with required dependencies.
func NewAccountHandler(useCase accountUseCase.UseCase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUseCase: useCase,
		logger:         logger,
	}
}

// CreateAccountHandler creates a new account.
// POST /v1/accounts - Requires the manage_keys capability.
// Returns 201 Created with the account.
func (h *AccountHandler) CreateAccountHandler(c *gin.Context) {
	var req dto.CreateAccountRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	account, err := h.accountUseCase.Create(c.Request.Context(), &accountUseCase.CreateAccountInput{
		Login:        req.Login,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAccountToResponse(account))
}

// GetAccountHandler retrieves an account by id.
// GET /v1/accounts/:id - Requires the manage_keys capability.
func (h *AccountHandler) GetAccountHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid account id: must be a valid UUID"), h.logger)
		return
	}

	account, err := h.accountUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccountToResponse(account))
}
