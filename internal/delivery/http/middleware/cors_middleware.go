package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware enforces the origin allow-list. It must run before any
// handler so a foreign origin is rejected (403) before the body is read.
// Requests without an Origin header are same-origin and pass through.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:        24 * time.Hour,
	})
}
