package suggestions

import (
	"context"
	"time"

	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
)

// WeatherGateway looks up current weather. It never fails outward.
type WeatherGateway interface {
	GetWeather(ctx context.Context, lat, lng float64) weather.Result
}

// NearbyFinder finds candidate requests around a coordinate.
type NearbyFinder interface {
	GetNearbyRequests(ctx context.Context, q requests.NearbyQuery) ([]requests.NearbyRequest, error)
}

// CategoryCounter aggregates request counts per category.
type CategoryCounter interface {
	CountByCategory(ctx context.Context, status string, since time.Time, limit int) ([]requests.CategoryCount, error)
}

// SuggestionProvider is the surface the HTTP handler depends on.
type SuggestionProvider interface {
	GetSuggestions(ctx context.Context, q SuggestionQuery) *SuggestionResult
	GetTrendingCategories(ctx context.Context, hours, limit int) ([]TrendingCategory, error)
	CurrentWeather(ctx context.Context, lat, lng float64) (*WeatherReport, error)
	GetInsights(ctx context.Context, q InsightsQuery) (*Insights, error)
}

var (
	_ WeatherGateway     = (*weather.Service)(nil)
	_ NearbyFinder       = (*requests.Matcher)(nil)
	_ CategoryCounter    = (requests.Store)(nil)
	_ SuggestionProvider = (*Service)(nil)
)
