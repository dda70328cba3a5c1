package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"contact-relay-backend/config"
	"contact-relay-backend/internal/delivery/http/middleware"
	"contact-relay-backend/internal/delivery/http/response"
	"contact-relay-backend/internal/domain"
	"contact-relay-backend/internal/usecase"
	"contact-relay-backend/pkg/apperror"
	"contact-relay-backend/pkg/logger"
	"contact-relay-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC      domain.ContactUsecase
	HealthUC       usecase.HealthUsecase
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler // nil disables /metrics
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	// ClientIP feeds the rate limiter; only listed proxies may set X-Forwarded-For
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Log.Error("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // before anything reads the body
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK)
	})
	if deps.HealthUC != nil {
		checks := gin.WrapH(deps.HealthUC.Handler())
		r.GET("/live", checks)
		r.GET("/ready", checks)
	}
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Contact form
	guards := []gin.HandlerFunc{middleware.BodySizeLimit(deps.Config.MaxBodyBytes)}
	if deps.RateLimiter != nil {
		guards = append(guards, deps.RateLimiter.Middleware())
	}
	NewContactHandler(r, deps.ContactUC, guards...)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Static site
	registerStatic(r, deps.Config.StaticDir)

	return r
}

// registerStatic serves index.html at / and every other file under dir for
// unmatched GET/HEAD requests.
func registerStatic(r *gin.Engine, dir string) {
	r.StaticFile("/", filepath.Join(dir, "index.html"))

	files := http.FileServer(gin.Dir(dir, false))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.Error(c, http.StatusNotFound, apperror.MsgNotFound)
			return
		}
		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err != nil || info.IsDir() || strings.HasPrefix(filepath.Base(name), ".") {
			response.Error(c, http.StatusNotFound, apperror.MsgNotFound)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
