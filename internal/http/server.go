// Package http provides the Gin HTTP server and route wiring.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	otelmetric "go.opentelemetry.io/otel/metric"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	accountHTTP "github.com/pklabs/keygate/internal/account/http"
	apikeyHTTP "github.com/pklabs/keygate/internal/apikey/http"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
	contentHTTP "github.com/pklabs/keygate/internal/content/http"
	"github.com/pklabs/keygate/internal/httputil"
	"github.com/pklabs/keygate/internal/metrics"
)

// Server represents the HTTP API server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// RouterConfig carries the handlers and middleware settings used to build the router.
type RouterConfig struct {
	KeyHandler      *apikeyHTTP.KeyHandler
	TokenHandler    *apikeyHTTP.TokenHandler
	AccountHandler  *accountHTTP.AccountHandler
	ContentHandler  *contentHTTP.ContentHandler
	KeyUseCase      apikeyUseCase.KeyUseCase
	PublicPolicy    *apikeyHTTP.PublicAccessPolicy
	BusinessMetrics metrics.BusinessMetrics

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider    otelmetric.MeterProvider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitIssueEnabled        bool
	RateLimitIssueRequestsPerSec float64
	RateLimitIssueBurst          int
}

// NewServer creates a new HTTP server. The database connection is used by the
// readiness endpoint; it may be nil, in which case the server reports not ready.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:     db,
		logger: logger,
	}
}

// SetupRouter builds the Gin router with all routes and middleware.
//
// Route groups:
//   - /health, /ready: unauthenticated probes
//   - POST /oauth/token: unauthenticated issuance, optionally rate limited per IP
//   - /v1/keys, /v1/accounts: authenticated, manage_keys capability required
//   - /v1/content: authenticated with the public GET bypass policy applied,
//     read capability required for non-anonymous access
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	issuance := router.Group("/oauth")
	if cfg.RateLimitIssueEnabled {
		issuance.Use(apikeyHTTP.IssueRateLimitMiddleware(
			cfg.RateLimitIssueRequestsPerSec,
			cfg.RateLimitIssueBurst,
			s.logger,
		))
	}
	issuance.POST("/token", cfg.TokenHandler.IssueTokenHandler)

	// Management routes never allow anonymous access, so no bypass policy.
	admin := router.Group("/v1")
	admin.Use(apikeyHTTP.AuthenticationMiddleware(cfg.KeyUseCase, nil, cfg.BusinessMetrics, s.logger))
	admin.Use(apikeyHTTP.RequireCapability(accountDomain.CapabilityManageKeys, s.logger))
	{
		admin.POST("/keys", cfg.KeyHandler.CreateKeyHandler)
		admin.GET("/keys", cfg.KeyHandler.ListKeysHandler)
		admin.GET("/keys/search", cfg.KeyHandler.SearchKeysHandler)
		admin.GET("/keys/owners/:login", cfg.KeyHandler.GetOwnerKeyHandler)
		admin.POST("/keys/:id/revoke", cfg.KeyHandler.RevokeKeyHandler)
		admin.POST("/keys/:id/restore", cfg.KeyHandler.RestoreKeyHandler)
		admin.DELETE("/keys/:id", cfg.KeyHandler.DeleteKeyHandler)

		admin.POST("/accounts", cfg.AccountHandler.CreateAccountHandler)
		admin.GET("/accounts/:id", cfg.AccountHandler.GetAccountHandler)
	}

	content := router.Group("/v1/content")
	content.Use(apikeyHTTP.AuthenticationMiddleware(cfg.KeyUseCase, cfg.PublicPolicy, cfg.BusinessMetrics, s.logger))
	content.Use(apikeyHTTP.RequireCapability(accountDomain.CapabilityRead, s.logger))
	{
		content.GET("", cfg.ContentHandler.ListCollectionsHandler)
		content.GET("/:collection", cfg.ContentHandler.GetCollectionHandler)

		// Content is read only, but write methods still need to traverse the
		// auth middleware: an anonymous write must get 401, not a routing
		// 404, since the public GET bypass never covers writes.
		writeMethods := []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
		content.Match(writeMethods, "", methodNotAllowedHandler)
		content.Match(writeMethods, "/:collection", methodNotAllowedHandler)
	}

	s.router = router
}

// methodNotAllowedHandler answers authenticated requests that use an
// unsupported method on a read-only route.
func methodNotAllowedHandler(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, httputil.ErrorResponse{
		Error:   "method_not_allowed",
		Message: "This resource is read only",
	})
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking the
// database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// GetHandler returns the router as an http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
