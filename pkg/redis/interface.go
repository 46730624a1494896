package redis

import (
	"context"
	"time"
)

// ClientInterface defines the Redis operations used by the service
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string, batch int64) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)
