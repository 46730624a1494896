package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLimiter struct {
	mock.Mock
	enabled bool
}

func (m *mockLimiter) Enabled() bool { return m.enabled }

func (m *mockLimiter) RuleFor(endpoint string) ratelimit.Rule {
	return m.Called(endpoint).Get(0).(ratelimit.Rule)
}

func (m *mockLimiter) Allow(ctx context.Context, endpoint, identity string, rule ratelimit.Rule) (ratelimit.Result, error) {
	args := m.Called(ctx, endpoint, identity, rule)
	return args.Get(0).(ratelimit.Result), args.Error(1)
}

func rateLimitedRouter(limiter RateLimiter, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			SetUserID(c, userID)
		}
		c.Next()
	})
	r.Use(RateLimit(limiter))
	r.GET("/api/v1/suggestions", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitAllows(t *testing.T) {
	userID := uuid.New()
	rule := ratelimit.Rule{Limit: 30, Burst: 10, Window: time.Minute}
	limiter := &mockLimiter{enabled: true}
	limiter.On("RuleFor", "GET:/api/v1/suggestions").Return(rule)
	limiter.On("Allow", mock.Anything, "GET:/api/v1/suggestions", "user:"+userID.String(), rule).
		Return(ratelimit.Result{Allowed: true, Remaining: 29, Limit: 30, ResetAfter: 2 * time.Second}, nil)

	w := serve(rateLimitedRouter(limiter, userID), httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "29", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Reset"))
	limiter.AssertExpectations(t)
}

func TestRateLimitRejects(t *testing.T) {
	rule := ratelimit.Rule{Limit: 1, Window: time.Minute}
	limiter := &mockLimiter{enabled: true}
	limiter.On("RuleFor", mock.Anything).Return(rule)
	limiter.On("Allow", mock.Anything, mock.Anything, mock.Anything, rule).
		Return(ratelimit.Result{Allowed: false, Limit: 1, RetryAfter: 300 * time.Millisecond}, nil)

	w := serve(rateLimitedRouter(limiter, uuid.Nil), httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	rule := ratelimit.Rule{Limit: 1, Window: time.Minute}
	limiter := &mockLimiter{enabled: true}
	limiter.On("RuleFor", mock.Anything).Return(rule)
	limiter.On("Allow", mock.Anything, mock.Anything, mock.Anything, rule).
		Return(ratelimit.Result{}, errors.New("redis down"))

	w := serve(rateLimitedRouter(limiter, uuid.New()), httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := &mockLimiter{enabled: false}

	w := serve(rateLimitedRouter(limiter, uuid.New()), httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	limiter.AssertNotCalled(t, "RuleFor", mock.Anything)
}
