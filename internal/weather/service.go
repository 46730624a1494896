// Package weather fetches and normalizes current weather conditions for a
// coordinate. Lookups never fail outward: every outcome is a Result whose
// Status says whether the snapshot is live, cached, canned or missing.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/config"
	"github.com/richxcame/neighborly/pkg/geo"
	"github.com/richxcame/neighborly/pkg/httpclient"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/resilience"
	"github.com/richxcame/neighborly/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tracerName = "weather"

// ErrNotConfigured is attached to results when no API key is available.
var ErrNotConfigured = errors.New("weather provider API key not configured")

// Service is the weather gateway backed by the OpenWeatherMap current-weather endpoint.
type Service struct {
	client   *httpclient.Client
	apiKey   string
	demoMode bool
	cache    *cache.Manager
	cacheTTL time.Duration
	breaker  *resilience.CircuitBreaker
	retry    resilience.RetryConfig
}

// providerRetryConfig retries throttled and 5xx provider responses once.
func providerRetryConfig() resilience.RetryConfig {
	cfg := resilience.QuickRetryConfig()
	cfg.RetryableChecker = func(err error) bool {
		return resilience.IsRetryableHTTPStatus(httpclient.StatusCode(err))
	}
	return cfg
}

// NewService creates a weather gateway. cache may be nil.
func NewService(cfg config.WeatherConfig, cacheManager *cache.Manager, opts ...httpclient.Option) *Service {
	return &Service{
		client:   httpclient.NewClient(cfg.BaseURL, cfg.Timeout(), opts...),
		apiKey:   cfg.APIKey,
		demoMode: cfg.DemoMode,
		cache:    cacheManager,
		cacheTTL: cfg.CacheTTL(),
		retry:    providerRetryConfig(),
	}
}

// SetCircuitBreaker enables circuit breaker protection for provider calls.
func (s *Service) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	s.breaker = cb
}

// SetRetryConfig replaces the retry policy for provider calls. The
// RetryableChecker is kept when cfg does not set one.
func (s *Service) SetRetryConfig(cfg resilience.RetryConfig) {
	if cfg.RetryableChecker == nil {
		cfg.RetryableChecker = s.retry.RetryableChecker
	}
	s.retry = cfg
}

// GetWeather returns the current weather at (lat, lng).
func (s *Service) GetWeather(ctx context.Context, lat, lng float64) Result {
	ctx, span := tracing.StartSpan(ctx, tracerName, "weather.GetWeather")
	defer span.End()

	result := s.lookup(ctx, lat, lng)

	span.SetAttributes(attribute.String("weather.status", string(result.Status)))
	if result.Err != nil {
		tracing.RecordError(ctx, result.Err)
	}
	recordOutcome(result.Status)
	return result
}

func (s *Service) lookup(ctx context.Context, lat, lng float64) Result {
	if s.apiKey == "" {
		if s.demoMode {
			return Result{Snapshot: demoSnapshot(), Status: StatusDemo}
		}
		logger.WarnContext(ctx, "weather provider API key not configured")
		return Result{Status: StatusUnconfigured, Err: ErrNotConfigured}
	}

	cell := geo.WeatherCell(lat, lng)
	if cell != "" {
		var cached Snapshot
		if err := s.cache.Get(ctx, cache.Keys.Weather(cell), &cached); err == nil {
			cached.Source = SourceCache
			return Result{Snapshot: &cached, Status: StatusCached}
		}
	}

	snapshot, err := s.fetch(ctx, lat, lng)
	if err != nil {
		return s.degrade(ctx, err)
	}

	if cell != "" {
		if err := s.cache.Set(ctx, cache.Keys.Weather(cell), snapshot, s.cacheTTL); err != nil {
			logger.WarnContext(ctx, "failed to cache weather snapshot", zap.String("cell", cell), zap.Error(err))
		}
	}
	return Result{Snapshot: snapshot, Status: StatusLive}
}

func (s *Service) degrade(ctx context.Context, err error) Result {
	unauthorized := httpclient.StatusCode(err) == http.StatusUnauthorized

	logger.WarnContext(ctx, "weather provider request failed",
		zap.Bool("demo_mode", s.demoMode),
		zap.Bool("unauthorized", unauthorized),
		zap.Error(err),
	)

	switch {
	case s.demoMode && unauthorized:
		return Result{Snapshot: demoUnauthorizedSnapshot(), Status: StatusDemo, Err: err}
	case s.demoMode:
		return Result{Snapshot: demoFallbackSnapshot(), Status: StatusDemoFallback, Err: err}
	default:
		return Result{Status: StatusFailed, Err: err}
	}
}

// fetch performs the provider call, through the breaker when one is set.
func (s *Service) fetch(ctx context.Context, lat, lng float64) (*Snapshot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	get := func(ctx context.Context) (interface{}, error) {
		return s.client.Get(ctx, "", params, nil)
	}
	// Retries stay inside the breaker so one lookup counts as one failure.
	call := func(ctx context.Context) (interface{}, error) {
		return resilience.Retry(ctx, s.retry, "weather.fetch", get)
	}

	var (
		result interface{}
		err    error
	)
	if s.breaker != nil {
		result, err = s.breaker.Execute(ctx, call)
	} else {
		result, err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected weather response type %T", result)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}

	snapshot := ExtractConditions(raw)
	snapshot.Source = SourceOpenWeatherMap
	return snapshot, nil
}
