package ratelimit

import (
	"os"
	"strconv"
	"strings"

	"github.com/bazaarlabs/settlement/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type LimiterConfig struct {
	RPS   float64
	Burst int
}

// Limiter pairs a shared token bucket with its per-IP budget.
type Limiter struct {
	bucket *TokenBucket
	cfg    LimiterConfig
}

// NewLimiter returns nil when redis is not configured, which disables
// rate limiting entirely.
func NewLimiter(cfg config.Config) *Limiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	lc := LimiterConfig{RPS: 25, Burst: 50}
	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil && v > 0 {
		lc.RPS = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil && v > 0 {
		lc.Burst = v
	}

	return &Limiter{bucket: NewTokenBucket(client), cfg: lc}
}

var Module = fx.Module("rate.limit",
	fx.Provide(NewLimiter),
)
