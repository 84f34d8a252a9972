package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/apikey/http/dto"
	"github.com/pklabs/keygate/internal/apikey/usecase/mocks"
)

func setupTokenRouter(useCase *mocks.MockKeyUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTokenHandler(useCase, testLogger())

	router := gin.New()
	router.POST("/oauth/token", handler.IssueTokenHandler)
	return router
}

func issueTokenRequest(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/oauth/token", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestTokenHandler_Issue(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := &mocks.MockKeyUseCase{}
		key := sampleKey("jdoe")
		useCase.On("IssueByEmail", mock.Anything, "jdoe@example.com").Return(key, nil)

		router := setupTokenRouter(useCase)
		w := issueTokenRequest(t, router, dto.IssueTokenRequest{Email: "jdoe@example.com"})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp dto.IssueTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, key.TokenValue, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "jdoe", resp.OwnerLogin)
		useCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownEmail", func(t *testing.T) {
		useCase := &mocks.MockKeyUseCase{}
		useCase.On("IssueByEmail", mock.Anything, "ghost@example.com").
			Return(nil, accountDomain.ErrAccountNotFound)

		router := setupTokenRouter(useCase)
		w := issueTokenRequest(t, router, dto.IssueTokenRequest{Email: "ghost@example.com"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidEmail", func(t *testing.T) {
		useCase := &mocks.MockKeyUseCase{}
		router := setupTokenRouter(useCase)

		w := issueTokenRequest(t, router, dto.IssueTokenRequest{Email: "not-an-email"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "IssueByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		useCase := &mocks.MockKeyUseCase{}
		router := setupTokenRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/oauth/token", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
