package middleware

import (
	"errors"
	"net/http"

	"contact-relay-backend/internal/delivery/http/response"
	"contact-relay-backend/pkg/apperror"
	"contact-relay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		requestID := c.GetString("RequestID")

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.ErrorContext(c.Request.Context(), "request failed",
					"request_id", requestID,
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		logger.Log.ErrorContext(c.Request.Context(), "unexpected error", "request_id", requestID, "error", err)
		response.Error(c, http.StatusInternalServerError, apperror.MsgMailSendFailed)
	}
}

// Recovery turns a panic into the generic server error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.ErrorContext(c.Request.Context(), "panic recovered",
			"request_id", c.GetString("RequestID"),
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		response.Error(c, http.StatusInternalServerError, apperror.MsgMailSendFailed)
		c.Abort()
	})
}
