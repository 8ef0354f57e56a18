package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthops/internal/core/apperror"
	"healthops/pkg/logger"
)

// ErrorHandler middleware turns the last handler error into the caller-facing
// result: {validationErrors} for field errors, {serverError, code} otherwise.
// Internal details are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		if appErr, ok := apperror.AsAppError(err); ok {
			status = appErr.HTTPStatus
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
		}

		c.JSON(status, apperror.Surface(err))
	}
}
