package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/churnlens/backend/pkg/logger"
	"github.com/wonny/churnlens/backend/pkg/redis"
)

// Limiter decides whether one more request fits a rate limit
type Limiter interface {
	Allow(ctx context.Context, cfg redis.RateLimitConfig) (bool, int, error)
}

// NewLimiter uses the shared Redis limiter when Redis is on,
// otherwise a per-process token bucket.
func NewLimiter(shared *redis.RateLimiter) Limiter {
	if shared.Enabled() {
		return shared
	}
	return NewLocalLimiter()
}

// LocalLimiter keeps one token bucket per key in memory
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalLimiter creates an empty local limiter
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{limiters: make(map[string]*rate.Limiter)}
}

// Allow takes one token from the bucket for cfg.Key.
// The bucket refills Limit tokens per Window with burst Limit.
func (l *LocalLimiter) Allow(_ context.Context, cfg redis.RateLimitConfig) (bool, int, error) {
	l.mu.Lock()
	lim, ok := l.limiters[cfg.Key]
	if !ok {
		every := cfg.Window / time.Duration(max(cfg.Limit, 1))
		lim = rate.NewLimiter(rate.Every(every), cfg.Limit)
		l.limiters[cfg.Key] = lim
	}
	l.mu.Unlock()

	allowed := lim.Allow()
	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, nil
}

// rateLimitMiddleware rejects requests over cfg per client IP with 429
func rateLimitMiddleware(limiter Limiter, cfg redis.RateLimitConfig, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, err := limiter.Allow(r.Context(), cfg.WithKey(clientIP(r)))
			if err != nil {
				// 리미터 장애 시 요청은 통과
				log.WithError(err).Warn("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
