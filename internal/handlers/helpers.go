package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moneta/internal/errors"
	"moneta/internal/middleware"
)

// bindJSON binds the request body, rendering a 400 on validation failure.
// Returns false when the request was rejected.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		renderError(c, errors.WithMessage(errors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

func renderError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryDate parses a YYYY-MM-DD query parameter. Returns nil when absent;
// rejects malformed values.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		renderError(c, errors.WithMessage(errors.ErrInvalidInput, name+" must be YYYY-MM-DD"))
		return nil, false
	}
	return &t, true
}
