package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	redisclient "github.com/richxcame/neighborly/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis redisclient.ClientInterface
}

// NewManager creates a new cache manager. A nil client yields a manager whose
// reads always miss and whose writes are dropped.
func NewManager(redis redisclient.ClientInterface) *Manager {
	return &Manager{redis: redis}
}

// ErrDisabled is returned by Get when no Redis client is configured.
var ErrDisabled = fmt.Errorf("cache disabled")

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	if m == nil || m.redis == nil {
		return ErrDisabled
	}

	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m == nil || m.redis == nil || ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	if m == nil || m.redis == nil {
		return nil
	}
	return m.redis.Delete(ctx, keys...)
}

// Invalidate removes keys matching a pattern
func (m *Manager) Invalidate(ctx context.Context, pattern string) (int, error) {
	if m == nil || m.redis == nil {
		return 0, nil
	}

	keys, err := m.redis.ScanKeys(ctx, pattern, 100)
	if err != nil {
		return 0, fmt.Errorf("failed to scan keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := m.redis.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("failed to delete keys: %w", err)
	}
	return len(keys), nil
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// Weather returns the cache key for a weather snapshot of an H3 cell
func (k CacheKeys) Weather(cell string) string {
	return fmt.Sprintf("weather:%s", cell)
}

// Trending returns the cache key for a trending-category window
func (k CacheKeys) Trending(hours, limit int) string {
	return fmt.Sprintf("trending:%d:%d", hours, limit)
}

// TrendingPattern matches every trending-category key
func (k CacheKeys) TrendingPattern() string {
	return "trending:*"
}
