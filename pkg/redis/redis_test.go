package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/churnlens/backend/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    "1", // nothing listens here
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := New(ctx, cfg); err == nil {
		t.Error("Expected connection error")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), RefreshRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != RefreshRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", RefreshRateLimit.Limit, remaining)
	}
	if limiter.Enabled() {
		t.Error("Expected limiter to report disabled")
	}

	if err := limiter.Wait(context.Background(), SourceRateLimit); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestRateLimitConfig_WithKey(t *testing.T) {
	cfg := ExportRateLimit.WithKey("10.0.0.1")

	if cfg.Key != "api:export:10.0.0.1" {
		t.Errorf("got key %q", cfg.Key)
	}
	if ExportRateLimit.Key != "api:export" {
		t.Error("WithKey must not modify the original")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(ctx, "key", "value", TTLShort); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	if n, err := cache.DeleteByPattern(ctx, SummaryPattern()); err != nil || n != 0 {
		t.Errorf("DeleteByPattern() = %d, %v", n, err)
	}
}

func TestCache_GetOrSetDisabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	calls := 0
	var dest map[string]int
	err := cache.GetOrSet(context.Background(), "k", &dest, TTLMedium, func() (interface{}, error) {
		calls++
		return map[string]int{"count": 3}, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if calls != 1 || dest["count"] != 3 {
		t.Errorf("calls=%d dest=%v", calls, dest)
	}
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "SummaryKey",
			fn:       func() string { return SummaryKey("run_1", "kpis") },
			expected: "summary:run_1:kpis",
		},
		{
			name:     "SummaryKeyWithArgs",
			fn:       func() string { return SummaryKey("run_1", "recency_hist", "bins=20") },
			expected: "summary:run_1:recency_hist:bins=20",
		},
		{
			name:     "SummaryPattern",
			fn:       SummaryPattern,
			expected: "summary:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
