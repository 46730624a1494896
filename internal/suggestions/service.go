// Package suggestions ranks nearby help requests for a user by combining
// distance, urgency, weather, time of day and freshness into one score.
package suggestions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/config"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "suggestions"

// Config holds orchestrator settings
type Config struct {
	DefaultRadiusKm  float64
	CandidateCap     int
	TrendingCacheTTL time.Duration
	// Location decides the time-of-day bucket.
	Location *time.Location
	// IncludeBreakdown attaches per-signal sub-scores to each suggestion.
	IncludeBreakdown bool
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRadiusKm:  config.DefaultSuggestionRadiusKm,
		CandidateCap:     config.DefaultCandidateCap,
		TrendingCacheTTL: time.Minute,
		Location:         time.Local,
	}
}

// ConfigFrom builds orchestrator settings from application configuration.
func ConfigFrom(cfg config.SuggestionConfig) *Config {
	c := DefaultConfig()
	if cfg.RadiusKm > 0 {
		c.DefaultRadiusKm = cfg.RadiusKm
	}
	if cfg.CandidateCap > 0 {
		c.CandidateCap = cfg.CandidateCap
	}
	c.Location = cfg.Location()
	return c
}

// Service orchestrates weather, matching, scoring and explanations.
type Service struct {
	weather   WeatherGateway
	matcher   NearbyFinder
	counter   CategoryCounter
	analyzer  *demand.Analyzer
	scorer    *Scorer
	explainer *Explainer
	cache     *cache.Manager
	config    *Config
	now       func() time.Time
}

// NewService creates a suggestion service. cacheManager may be nil.
func NewService(weatherGW WeatherGateway, matcher NearbyFinder, counter CategoryCounter, analyzer *demand.Analyzer, cacheManager *cache.Manager, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	scorer := NewScorer(analyzer)
	return &Service{
		weather:   weatherGW,
		matcher:   matcher,
		counter:   counter,
		analyzer:  analyzer,
		scorer:    scorer,
		explainer: NewExplainer(scorer, analyzer),
		cache:     cacheManager,
		config:    cfg,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for time buckets, freshness and expiry.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// GetSuggestions returns up to q.MaxSuggestions ranked requests near the
// query origin. It never fails: steps that go wrong are recorded as
// degradations on the result and logged.
func (s *Service) GetSuggestions(ctx context.Context, q SuggestionQuery) *SuggestionResult {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "suggestions.GetSuggestions")
	defer span.End()

	now := s.now()
	result := &SuggestionResult{
		Suggestions: []Suggestion{},
		TimeBucket:  demand.BucketAt(now, s.config.Location),
		RadiusKm:    s.radius(q.RadiusKm),
		GeneratedAt: now.UTC(),
	}
	defer func() {
		span.SetAttributes(
			tracing.ResultCountKey.Int(len(result.Suggestions)),
			tracing.DegradationsKey.StringSlice(result.DegradationNames()),
		)
		recordResult(result, time.Since(start).Seconds())
	}()
	span.SetAttributes(tracing.LocationAttributes(q.Latitude, q.Longitude, result.RadiusKm)...)

	if err := q.Validate(); err != nil {
		logger.WarnContext(ctx, "rejected suggestion query", zap.Error(err))
		result.degrade(DegradationInvalidQuery)
		return result
	}

	var (
		wx       weather.Result
		trending map[string]int
		trendErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		wx = s.weather.GetWeather(ctx, q.Latitude, q.Longitude)
		return nil
	})
	g.Go(func() error {
		trending, trendErr = s.trendingCounts(ctx)
		return nil
	})
	_ = g.Wait()

	result.Weather = wx.Snapshot
	result.WeatherStatus = wx.Status
	if d, ok := weatherDegradation(wx.Status); ok {
		result.degrade(d)
	}
	if trendErr != nil {
		logger.WarnContext(ctx, "trending counts unavailable, explanations skip trending", zap.Error(trendErr))
		result.degrade(DegradationTrendingUnavailable)
	}

	nearby, err := s.matcher.GetNearbyRequests(ctx, requests.NearbyQuery{
		Origin:        q.origin(),
		RadiusKm:      result.RadiusKm,
		Status:        requests.StatusOpen,
		ExcludeUserID: q.UserID,
		Limit:         s.config.CandidateCap,
	})
	if err != nil {
		if errors.Is(err, requests.ErrInvalidRadius) || errors.Is(err, requests.ErrInvalidOrigin) {
			logger.WarnContext(ctx, "rejected nearby query", zap.Error(err))
			result.degrade(DegradationInvalidQuery)
			return result
		}
		logger.WarnContext(ctx, "candidate store unavailable, returning no suggestions", zap.Error(err))
		tracing.RecordError(ctx, err)
		result.degrade(DegradationStoreUnavailable)
		return result
	}

	_ = tracing.TraceBusinessLogic(ctx, tracerName, "suggestions.rank",
		[]attribute.KeyValue{tracing.ResultCountKey.Int(len(nearby))},
		func(context.Context) error {
			result.Suggestions = s.rank(nearby, q, wx.Snapshot, result.TimeBucket, trending, now)
			return nil
		},
	)
	return result
}

type scoredCandidate struct {
	request   requests.NearbyRequest
	breakdown ScoreBreakdown
}

func (s *Service) rank(nearby []requests.NearbyRequest, q SuggestionQuery, snapshot *weather.Snapshot, bucket demand.Bucket, trending map[string]int, now time.Time) []Suggestion {
	scored := make([]scoredCandidate, len(nearby))
	for i := range nearby {
		scored[i] = scoredCandidate{
			request:   nearby[i],
			breakdown: s.scorer.Score(&nearby[i].CandidateRequest, snapshot, bucket, nearby[i].DistanceKm, now),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.breakdown.Total != b.breakdown.Total {
			return a.breakdown.Total > b.breakdown.Total
		}
		if a.request.DistanceKm != b.request.DistanceKm {
			return a.request.DistanceKm < b.request.DistanceKm
		}
		return strings.Compare(a.request.ID.String(), b.request.ID.String()) < 0
	})

	limit := maxSuggestions(q.MaxSuggestions)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]Suggestion, len(scored))
	for i, sc := range scored {
		c := sc.request
		out[i] = Suggestion{
			ID:             c.ID,
			Title:          c.Title,
			Category:       c.Category,
			Description:    c.Description,
			Urgency:        c.Urgency,
			TimeWindow:     c.TimeWindow,
			CreatedAt:      c.CreatedAt,
			DistanceKm:     c.DistanceKm,
			RelevanceScore: round2(sc.breakdown.Total),
		}
		if q.IncludeExplanation {
			out[i].Explanation = s.explainer.Explain(ExplanationInput{
				Candidate: c,
				Weather:   snapshot,
				Bucket:    bucket,
				Trending:  trending,
				Now:       now,
			})
		}
		if s.config.IncludeBreakdown {
			b := sc.breakdown
			out[i].Breakdown = &b
		}
	}
	return out
}

func (s *Service) radius(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return s.config.DefaultRadiusKm
}

func maxSuggestions(requested int) int {
	if requested <= 0 {
		return DefaultMaxSuggestions
	}
	if requested > MaxSuggestionsLimit {
		return MaxSuggestionsLimit
	}
	return requested
}
