package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/tamedachi/tamedachi/internal/config"
)

const keyAnalyzeUser = "ratelimit:analyze:%s"

// AnalyzeLimiter throttles credibility checks per user so one user cannot
// burn the whole upstream budget. Disabled when no redis address is
// configured; every check is then allowed.
type AnalyzeLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAnalyzeLimiter(cfg config.Config) *AnalyzeLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &AnalyzeLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &AnalyzeLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    float64(cfg.AnalyzeRatePerMinute) / 60,
		burst:   cfg.AnalyzeBurst,
	}
}

func (l *AnalyzeLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow reports whether the user may run another credibility check now, and
// if not, how long to wait. Redis failures fail open so a cache outage never
// takes the product down with it.
func (l *AnalyzeLimiter) Allow(ctx context.Context, userID snowflake.ID) (bool, time.Duration, error) {
	if !l.Enabled() {
		return true, 0, nil
	}

	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyAnalyzeUser, userID.String()), l.rate, l.burst)
	if err != nil {
		return true, 0, err
	}
	return res.Allowed, res.RetryAfter, nil
}
