package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", IssueRateLimitMiddleware(rps, burst, testLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestIssueRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	router := setupRateLimitedRouter(1, 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/oauth/token", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestIssueRateLimitMiddleware_RejectsOverBurst(t *testing.T) {
	router := setupRateLimitedRouter(0.001, 1)

	first := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/oauth/token", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/oauth/token", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestIssueRateLimitMiddleware_IsolatesClients(t *testing.T) {
	router := setupRateLimitedRouter(0.001, 1)

	first := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/oauth/token", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	// A different IP has its own bucket
	other := httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/oauth/token", nil)
	req.RemoteAddr = "10.0.0.4:1234"
	router.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}
