package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/errors"
	"moneta/internal/logger"
)

// errorBody is the uniform error envelope for all failure responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RenderError writes an error response. AppErrors map to their status and
// code; anything else becomes an opaque 500 so internals never leak.
func RenderError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		logger.Get().Errorw("unhandled error", "path", c.FullPath(), "error", err)
		appErr = errors.ErrInternalServer
	} else if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Get().Errorw("internal error",
			"path", c.FullPath(), "code", appErr.Code, "error", appErr.Internal)
	}

	var body errorBody
	body.Error.Code = appErr.Code
	body.Error.Message = appErr.Message
	c.JSON(appErr.StatusCode, body)
}

func abortWithError(c *gin.Context, err error) {
	RenderError(c, err)
	c.Abort()
}

// Recovery converts panics into 500 responses without killing the process.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Get().Errorw("panic recovered", "path", c.FullPath(), "panic", r)
				abortWithError(c, errors.ErrInternalServer)
			}
		}()
		c.Next()
	}
}
