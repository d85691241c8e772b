package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching utilities
// ⭐ SSOT: 공유 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// DeleteByPattern removes every cached key matching pattern (SCAN, not KEYS).
// Returns the number of keys removed.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if !c.client.Enabled() {
		return 0, nil
	}

	rdb := c.client.Redis()
	iter := rdb.Scan(ctx, 0, c.fullKey(pattern), 100).Iterator()

	removed := 0
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache delete failed: %w", err)
		}
		removed++
	}
	return removed, iter.Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first
	found, err := c.Get(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	// Cache miss (or unreachable cache) - call function
	value, err := fn()
	if err != nil {
		return err
	}

	// 캐시 저장 실패는 무시
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // 요청 파라미터별 뷰
	TTLMedium = 10 * time.Minute // 요약 뷰
	TTLLong   = 1 * time.Hour
)

// SummaryKey identifies one summary view of one feature snapshot,
// e.g. "summary:run_20181017_030000.000:recency_hist:bins=20"
func SummaryKey(runID, view string, args ...string) string {
	key := fmt.Sprintf("summary:%s:%s", runID, view)
	for _, a := range args {
		key += ":" + a
	}
	return key
}

// SummaryPattern matches every summary view key
func SummaryPattern() string {
	return "summary:*"
}
