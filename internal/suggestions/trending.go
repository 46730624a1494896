package suggestions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetTrendingCategories counts open requests created in the last hours,
// grouped by category, most requested first. Non-positive arguments take
// the defaults and larger ones are capped.
func (s *Service) GetTrendingCategories(ctx context.Context, hours, limit int) ([]TrendingCategory, error) {
	hours, limit = normalizeTrendingWindow(hours, limit)

	ctx, span := tracing.StartSpan(ctx, tracerName, "suggestions.GetTrendingCategories")
	defer span.End()
	span.SetAttributes(attribute.Int("trending.hours", hours), attribute.Int("trending.limit", limit))

	key := cache.Keys.Trending(hours, limit)
	var cached []TrendingCategory
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		trendingCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	trendingCacheTotal.WithLabelValues("miss").Inc()

	since := s.now().UTC().Add(-time.Duration(hours) * time.Hour)
	counts, err := s.counter.CountByCategory(ctx, requests.StatusOpen, since, limit)
	if err != nil {
		tracing.RecordError(ctx, err)
		return []TrendingCategory{}, fmt.Errorf("failed to get trending categories: %w", err)
	}

	trending := make([]TrendingCategory, len(counts))
	for i, c := range counts {
		trending[i] = TrendingCategory{Category: c.Category, Count: c.Count}
	}

	if err := s.cache.Set(ctx, key, trending, s.config.TrendingCacheTTL); err != nil {
		logger.WarnContext(ctx, "failed to cache trending categories", zap.Error(err))
	}
	return trending, nil
}

// trendingCounts feeds explanations; it is keyed by lower-cased category.
func (s *Service) trendingCounts(ctx context.Context) (map[string]int, error) {
	trending, err := s.GetTrendingCategories(ctx, DefaultTrendingHours, DefaultTrendingLimit)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(trending))
	for _, t := range trending {
		counts[strings.ToLower(t.Category)] += t.Count
	}
	return counts, nil
}

func normalizeTrendingWindow(hours, limit int) (int, int) {
	if hours <= 0 {
		hours = DefaultTrendingHours
	}
	if hours > MaxTrendingHours {
		hours = MaxTrendingHours
	}
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	if limit > MaxTrendingLimit {
		limit = MaxTrendingLimit
	}
	return hours, limit
}
