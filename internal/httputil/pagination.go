package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination bounds for the key list and search endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ParsePagination reads the offset and limit query parameters. Offset defaults
// to 0, limit to DefaultPageSize. A limit above MaxPageSize is rejected rather
// than clamped so callers notice the bound.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = parseIntParam(c, "offset", 0)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = parseIntParam(c, "limit", DefaultPageSize)
	if err != nil || limit < 1 || limit > MaxPageSize {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageSize)
	}

	return offset, limit, nil
}

func parseIntParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
