package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-relay-backend/config"
	_ "contact-relay-backend/docs" // Important for Swagger
	"contact-relay-backend/internal/delivery/http/middleware"
	v1 "contact-relay-backend/internal/delivery/http/v1"
	"contact-relay-backend/internal/usecase"
	"contact-relay-backend/pkg/email"
	"contact-relay-backend/pkg/logger"
	"contact-relay-backend/pkg/metrics"
	"contact-relay-backend/pkg/redis"
	"contact-relay-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Contact Relay API
// @version         1.0
// @description     Relays contact form submissions to an email provider.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Log.Info("Starting contact relay", "port", cfg.Port, "provider", cfg.MailProvider)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Redis (optional)
	var redisClient *goredis.Client
	redisClient, err = redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Info("Redis not configured, rate limiting uses process memory")
	case err != nil:
		logger.Log.Warn("Redis unavailable, rate limiting uses process memory", "error", err)
		redisClient = nil
	default:
		defer redisClient.Close()
	}

	// 4. Setup Email Provider
	sender, err := email.New(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Failed to set up email provider", "error", err)
		os.Exit(1)
	}

	// 5. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)
	m := metrics.New(prometheus.DefaultRegisterer)

	contactUC := usecase.NewContactUsecase(sender, validate, usecase.ContactConfig{
		From:    cfg.MailFrom,
		To:      cfg.MailTo,
		Timeout: cfg.ProviderTimeout,
	}, logger.Log, m)
	healthUC := usecase.NewHealthUsecase(redisClient)
	logger.Log.Info("Dependency status", "status", healthUC.Check(ctx))

	// 6. Setup Rate Limiter
	rateLimiter := middleware.NewRateLimiter(middleware.SendRateLimitConfig(
		cfg.RateLimitSendThreshold,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	), redisClient)
	go rateLimiter.Cleanup(ctx, time.Minute)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:      contactUC,
		HealthUC:       healthUC,
		RateLimiter:    rateLimiter,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
		Config:         cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout + 10*time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
