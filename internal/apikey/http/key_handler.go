package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/apikey/http/dto"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
	"github.com/pklabs/keygate/internal/httputil"
	customValidation "github.com/pklabs/keygate/internal/validation"
)

// KeyHandler handles HTTP requests for API key management operations.
type KeyHandler struct {
	keyUseCase apikeyUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(keyUseCase apikeyUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// CreateKeyHandler creates or rotates the key for an owner.
// POST /v1/keys - Requires the manage_keys capability.
// Returns 201 Created with the key, including its token value.
func (h *KeyHandler) CreateKeyHandler(c *gin.Context) {
	var req dto.CreateKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.keyUseCase.Generate(c.Request.Context(), req.OwnerLogin)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyToResponse(key))
}

// ListKeysHandler lists keys, newest first.
// GET /v1/keys?offset=0&limit=50 - Requires the manage_keys capability.
func (h *KeyHandler) ListKeysHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	keys, err := h.keyUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeysToListResponse(keys))
}

// SearchKeysHandler searches keys by token value or owner login substring.
// GET /v1/keys/search?q=term - Requires the manage_keys capability.
func (h *KeyHandler) SearchKeysHandler(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		httputil.HandleBadRequestGin(c, fmt.Errorf("missing required query parameter: q"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	keys, err := h.keyUseCase.Search(c.Request.Context(), term, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeysToListResponse(keys))
}

// GetOwnerKeyHandler returns the key bound to an owner login.
// GET /v1/keys/owners/:login - Requires the manage_keys capability.
func (h *KeyHandler) GetOwnerKeyHandler(c *gin.Context) {
	login := c.Param("login")

	key, err := h.keyUseCase.GetForOwner(c.Request.Context(), login)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// RevokeKeyHandler marks a key as revoked.
// POST /v1/keys/:id/revoke - Requires the manage_keys capability.
func (h *KeyHandler) RevokeKeyHandler(c *gin.Context) {
	id, ok := h.parseKeyID(c)
	if !ok {
		return
	}

	if err := h.keyUseCase.Revoke(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RestoreKeyHandler clears the revoked flag of a key.
// POST /v1/keys/:id/restore - Requires the manage_keys capability.
func (h *KeyHandler) RestoreKeyHandler(c *gin.Context) {
	id, ok := h.parseKeyID(c)
	if !ok {
		return
	}

	if err := h.keyUseCase.Restore(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteKeyHandler removes a key permanently.
// DELETE /v1/keys/:id - Requires the manage_keys capability.
func (h *KeyHandler) DeleteKeyHandler(c *gin.Context) {
	id, ok := h.parseKeyID(c)
	if !ok {
		return
	}

	if err := h.keyUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *KeyHandler) parseKeyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid key id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
