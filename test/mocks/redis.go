package mocks

import (
	"context"
	"time"

	redisClient "github.com/richxcame/neighborly/pkg/redis"
	"github.com/stretchr/testify/mock"
)

// MockRedisClient is a mock implementation of the Redis client
type MockRedisClient struct {
	mock.Mock
}

// Ensure MockRedisClient implements ClientInterface
var _ redisClient.ClientInterface = (*MockRedisClient)(nil)

// SetWithExpiration mocks setting a key with expiration
func (m *MockRedisClient) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

// GetString mocks getting a string value
func (m *MockRedisClient) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// Delete mocks deleting keys
func (m *MockRedisClient) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// ScanKeys mocks a SCAN over a key pattern
func (m *MockRedisClient) ScanKeys(ctx context.Context, pattern string, batch int64) ([]string, error) {
	args := m.Called(ctx, pattern, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Ping mocks a health probe
func (m *MockRedisClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the client
func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}
