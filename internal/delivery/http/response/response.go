package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int) {
	c.JSON(code, Response{OK: true})
}

// Error sends an error response. message must come from the fixed public
// vocabulary in apperror.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{OK: false, Error: message})
}
