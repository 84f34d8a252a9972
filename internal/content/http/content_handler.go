// Package http provides HTTP handlers for the gated content resources.
package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	apikeyHTTP "github.com/pklabs/keygate/internal/apikey/http"
	apperrors "github.com/pklabs/keygate/internal/errors"
	"github.com/pklabs/keygate/internal/httputil"
)

// ContentHandler serves the read-only resources the authentication layer
// gates. Collections are fixed at startup; the handler's job is to show what
// the caller may see, not to manage content.
type ContentHandler struct {
	collections []string
	logger      *slog.Logger
}

// NewContentHandler creates a content handler over a fixed set of collections.
func NewContentHandler(collections []string, logger *slog.Logger) *ContentHandler {
	sorted := make([]string, len(collections))
	copy(sorted, collections)
	sort.Strings(sorted)

	return &ContentHandler{
		collections: sorted,
		logger:      logger,
	}
}

// ListCollectionsHandler returns the available collections.
// GET /v1/content
func (h *ContentHandler) ListCollectionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"collections": h.collections,
		"viewer":      h.viewer(c),
	})
}

// GetCollectionHandler returns a collection listing.
// GET /v1/content/:collection
func (h *ContentHandler) GetCollectionHandler(c *gin.Context) {
	name := c.Param("collection")

	for _, collection := range h.collections {
		if collection == name {
			c.JSON(http.StatusOK, gin.H{
				"collection": name,
				"viewer":     h.viewer(c),
			})
			return
		}
	}

	httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrNotFound, "unknown collection"), h.logger)
}

// viewer names the authenticated account, or "anonymous" for requests that
// arrived through a public-access bypass.
func (h *ContentHandler) viewer(c *gin.Context) string {
	if account, ok := apikeyHTTP.GetAccount(c.Request.Context()); ok {
		return account.Login
	}
	return "anonymous"
}
