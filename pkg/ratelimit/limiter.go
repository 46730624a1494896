// Package ratelimit implements a Redis-backed token bucket shared by every
// replica of a service.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/richxcame/neighborly/pkg/config"
)

// Rule is the quota applied to one identity on one endpoint.
type Rule struct {
	Limit  int
	Burst  int
	Window time.Duration
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
	ResetAfter time.Duration
}

// Limiter spends tokens from a bucket stored in a Redis hash. The bucket
// refills at Limit tokens per Window and holds at most Limit+Burst tokens.
type Limiter struct {
	client redis.Scripter
	cfg    config.RateLimitConfig
	script *redis.Script
	now    func() time.Time
}

// Refill, spend one token if possible, and report {allowed, tokens, retryAfterMs}.
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local refillRate = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call("HMGET", key, "tokens", "timestamp")
local tokens = tonumber(data[1]) or capacity
local timestamp = tonumber(data[2]) or now

local delta = now - timestamp
if delta > 0 then
    tokens = math.min(capacity, tokens + (delta * refillRate))
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call("HSET", key, "tokens", tokens, "timestamp", now)
redis.call("PEXPIRE", key, ttl)

local retryAfter = 0
if allowed == 0 then
    retryAfter = math.ceil((1 - tokens) / refillRate)
end

return {allowed, tostring(tokens), retryAfter}
`

// NewLimiter creates a limiter over client.
func NewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// WithNow overrides the time source.
func (l *Limiter) WithNow(now func() time.Time) {
	l.now = now
}

// Enabled reports whether limits are enforced.
func (l *Limiter) Enabled() bool {
	return l != nil && l.cfg.Enabled
}

// RuleFor returns the effective rule for an endpoint key such as
// "GET:/api/v1/suggestions". A Limit of zero disables limiting.
func (l *Limiter) RuleFor(endpoint string) Rule {
	rule := Rule{Limit: l.cfg.Limit, Burst: l.cfg.Burst, Window: l.cfg.Window()}
	if override, ok := l.cfg.EndpointLimits[endpoint]; ok {
		rule.Limit = override
	}
	if rule.Limit < 0 {
		rule.Limit = 0
	}
	if rule.Burst < 0 {
		rule.Burst = 0
	}
	return rule
}

// Allow spends one token for identity on endpoint.
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string, rule Rule) (Result, error) {
	if !l.Enabled() || rule.Limit <= 0 {
		return Result{Allowed: true, Remaining: rule.Limit, Limit: rule.Limit}, nil
	}
	if rule.Window <= 0 {
		rule.Window = l.cfg.Window()
	}

	windowMillis := rule.Window.Milliseconds()
	refillRate := float64(rule.Limit) / float64(windowMillis)
	capacity := float64(rule.Limit + rule.Burst)

	key := fmt.Sprintf("%s:%s:%s", l.cfg.RedisPrefix, endpoint, identity)
	raw, err := l.script.Run(ctx, l.client, []string{key},
		l.now().UnixMilli(),
		strconv.FormatFloat(refillRate, 'f', 10, 64),
		strconv.FormatFloat(capacity, 'f', 10, 64),
		windowMillis*2,
	).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}

	return parseScriptResult(raw, rule, capacity, refillRate)
}

func parseScriptResult(raw interface{}, rule Rule, capacity, refillRate float64) (Result, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Result{}, errors.New("unexpected rate limit script response")
	}

	tokens := toFloat(values[1])
	result := Result{
		Allowed:   toInt(values[0]) == 1,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		Limit:     rule.Limit,
	}

	if result.Allowed {
		missing := math.Max(0, capacity-tokens)
		result.ResetAfter = time.Duration(math.Ceil(missing/refillRate)) * time.Millisecond
		return result, nil
	}

	result.RetryAfter = time.Duration(toInt(values[2])) * time.Millisecond
	result.ResetAfter = result.RetryAfter
	return result, nil
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	default:
		return 0
	}
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
