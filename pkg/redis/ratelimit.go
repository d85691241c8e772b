package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis
// ⭐ SSOT: 분산 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	seq    atomic.Uint64
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "source", "api:refresh")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// WithKey returns a copy of cfg scoped to a sub key (e.g. client IP)
func (cfg RateLimitConfig) WithKey(sub string) RateLimitConfig {
	cfg.Key = cfg.Key + ":" + sub
	return cfg
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Enabled reports whether limits are enforced
func (r *RateLimiter) Enabled() bool {
	return r != nil && r.client.Enabled()
}

var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	-- Remove old entries outside the window
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	-- Count current requests in window
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	else
		return {0, 0}
	end
`)

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.Enabled() {
		// If Redis is disabled, allow all requests
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now().UnixMilli()
	windowStart := now - cfg.Window.Milliseconds()
	// 같은 ms 내 요청도 구분되도록 member에 시퀀스 부여
	member := fmt.Sprintf("%d-%d", now, r.seq.Add(1))

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now,
		windowStart,
		cfg.Limit,
		cfg.Window.Milliseconds(),
		member,
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed := result[0].(int64) == 1
	remaining := int(result[1].(int64))

	return allowed, remaining, nil
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Retry
		}
	}
}

// Predefined rate limit configs
var (
	// Remote CSV source: 초당 5회 제한
	SourceRateLimit = RateLimitConfig{
		Key:    "source",
		Limit:  5,
		Window: time.Second,
	}

	// POST /api/refresh: 분당 6회 (파이프라인 전체 재계산)
	RefreshRateLimit = RateLimitConfig{
		Key:    "api:refresh",
		Limit:  6,
		Window: time.Minute,
	}

	// CSV export: 분당 30회
	ExportRateLimit = RateLimitConfig{
		Key:    "api:export",
		Limit:  30,
		Window: time.Minute,
	}
)
