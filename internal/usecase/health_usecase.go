package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
	// Handler serves /live and /ready style health checks.
	Handler() http.Handler
}

type healthUsecase struct {
	health healthcheck.Handler
	redis  *goredis.Client
}

// NewHealthUsecase wires the health checks. redisClient may be nil when the rate
// limiter runs in memory.
func NewHealthUsecase(redisClient *goredis.Client) HealthUsecase {
	u := &healthUsecase{
		health: healthcheck.NewHandler(),
		redis:  redisClient,
	}

	u.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	if redisClient != nil {
		u.health.AddReadinessCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		})
	}
	return u
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
		"redis":  "not_configured",
	}
	if u.redis != nil {
		if err := u.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
		} else {
			status["redis"] = "ok"
		}
	}
	return status
}

func (u *healthUsecase) Handler() http.Handler {
	return u.health
}
