package middleware

import (
	"net/http"
	"strconv"

	"contact-relay-backend/internal/delivery/http/response"
	"contact-relay-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit caps contact submissions. Field-level limits are separate.
const DefaultBodyLimit = 16 * 1024

// BodySizeLimit rejects declared oversize bodies up front and caps the
// reader for chunked or lying clients. Handlers see *http.MaxBytesError when
// the cap is hit mid-read.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, apperror.MsgPayloadTooLarge)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Header("X-Max-Body-Size", strconv.FormatInt(maxBytes, 10))

		c.Next()
	}
}
