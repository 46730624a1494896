package suggestions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/richxcame/neighborly/pkg/geo"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// insightsNearbyLimit caps how many nearby requests an insights call counts.
const insightsNearbyLimit = 50

// WeatherSourceUnavailable is reported when no snapshot could be produced.
const WeatherSourceUnavailable = "unavailable"

// WeatherReport is the current weather at a coordinate as shown to users.
// Weather is never nil: a placeholder stands in when the provider failed.
type WeatherReport struct {
	Available    bool              `json:"available"`
	Source       string            `json:"source"`
	Status       weather.Status    `json:"status"`
	Weather      *weather.Snapshot `json:"weather"`
	Location     geo.Coordinate    `json:"location_used"`
	Degradations []Degradation     `json:"degradations,omitempty"`
}

// InsightsQuery asks for an overview of the help needed around a coordinate.
type InsightsQuery struct {
	// UserID is excluded from the nearby count; uuid.Nil counts everyone.
	UserID    uuid.UUID
	Latitude  float64
	Longitude float64
	// RadiusKm of zero uses the configured default.
	RadiusKm float64
}

// WeatherSummary is the slice of a snapshot insights report on.
type WeatherSummary struct {
	Condition   string   `json:"condition"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Opportunities lists categories in demand under the current conditions.
type Opportunities struct {
	Weather     []string `json:"weather_opportunities"`
	Time        []string `json:"time_opportunities"`
	Temperature []string `json:"temperature_opportunities"`
}

// Insights summarises demand around a coordinate.
type Insights struct {
	TotalNearbyRequests int                `json:"total_nearby_requests"`
	RadiusKm            float64            `json:"radius_km"`
	Weather             WeatherSummary     `json:"weather_summary"`
	WeatherStatus       weather.Status     `json:"weather_status"`
	TimeBucket          demand.Bucket      `json:"current_time_period"`
	TemperatureBand     demand.Band        `json:"temperature_band"`
	TrendingCategories  []TrendingCategory `json:"trending_categories"`
	Recommendations     Opportunities      `json:"recommendations"`
	Degradations        []Degradation      `json:"degradations,omitempty"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// Degraded reports whether any step fell back.
func (i *Insights) Degraded() bool {
	return len(i.Degradations) > 0
}

// CurrentWeather reports the weather at (lat, lng). Only invalid
// coordinates fail; provider trouble yields a placeholder snapshot.
func (s *Service) CurrentWeather(ctx context.Context, lat, lng float64) (*WeatherReport, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "suggestions.CurrentWeather")
	defer span.End()

	if err := validateOrigin(lat, lng); err != nil {
		return nil, err
	}

	wx := s.weather.GetWeather(ctx, lat, lng)
	report := &WeatherReport{
		Available: wx.Available(),
		Status:    wx.Status,
		Weather:   wx.Snapshot,
		Source:    WeatherSourceUnavailable,
		Location:  geo.Coordinate{Latitude: lat, Longitude: lng},
	}
	if wx.Available() && wx.Snapshot.Source != "" {
		report.Source = wx.Snapshot.Source
	}
	if !wx.Available() {
		report.Weather = &weather.Snapshot{
			Condition:   "Unknown",
			Description: "Weather unavailable",
			Source:      WeatherSourceUnavailable,
		}
	}
	if d, ok := weatherDegradation(wx.Status); ok {
		report.Degradations = appendDegradation(report.Degradations, d)
	}
	return report, nil
}

// GetInsights counts nearby open requests and lists the categories the
// current weather, time of day and temperature make likely. Only an invalid
// query fails; other problems are recorded as degradations.
func (s *Service) GetInsights(ctx context.Context, q InsightsQuery) (*Insights, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "suggestions.GetInsights")
	defer span.End()

	if err := validateOrigin(q.Latitude, q.Longitude); err != nil {
		return nil, err
	}
	if q.RadiusKm < 0 {
		return nil, requests.ErrInvalidRadius
	}

	now := s.now()
	insights := &Insights{
		RadiusKm:           s.radius(q.RadiusKm),
		TimeBucket:         demand.BucketAt(now, s.config.Location),
		TrendingCategories: []TrendingCategory{},
		GeneratedAt:        now.UTC(),
	}
	span.SetAttributes(tracing.LocationAttributes(q.Latitude, q.Longitude, insights.RadiusKm)...)

	var (
		wx       weather.Result
		trending []TrendingCategory
		trendErr error
		nearby   []requests.NearbyRequest
		nearErr  error
	)
	var g errgroup.Group
	g.Go(func() error {
		wx = s.weather.GetWeather(ctx, q.Latitude, q.Longitude)
		return nil
	})
	g.Go(func() error {
		trending, trendErr = s.GetTrendingCategories(ctx, DefaultTrendingHours, DefaultTrendingLimit)
		return nil
	})
	g.Go(func() error {
		nearby, nearErr = s.matcher.GetNearbyRequests(ctx, requests.NearbyQuery{
			Origin:        geo.Coordinate{Latitude: q.Latitude, Longitude: q.Longitude},
			RadiusKm:      insights.RadiusKm,
			Status:        requests.StatusOpen,
			ExcludeUserID: q.UserID,
			Limit:         insightsNearbyLimit,
		})
		return nil
	})
	_ = g.Wait()

	insights.WeatherStatus = wx.Status
	if d, ok := weatherDegradation(wx.Status); ok {
		insights.Degradations = appendDegradation(insights.Degradations, d)
	}

	if nearErr != nil {
		if errors.Is(nearErr, requests.ErrInvalidRadius) || errors.Is(nearErr, requests.ErrInvalidOrigin) {
			return nil, nearErr
		}
		logger.WarnContext(ctx, "candidate store unavailable, nearby count is zero", zap.Error(nearErr))
		tracing.RecordError(ctx, nearErr)
		insights.Degradations = appendDegradation(insights.Degradations, DegradationStoreUnavailable)
	}
	insights.TotalNearbyRequests = len(nearby)

	if trendErr != nil {
		logger.WarnContext(ctx, "trending categories unavailable for insights", zap.Error(trendErr))
		insights.Degradations = appendDegradation(insights.Degradations, DegradationTrendingUnavailable)
	} else {
		insights.TrendingCategories = trending
	}

	var temperature *float64
	if wx.Snapshot != nil {
		temperature = wx.Snapshot.Temperature
		insights.Weather = WeatherSummary{
			Condition:   wx.Snapshot.Condition,
			Temperature: wx.Snapshot.Temperature,
			Humidity:    wx.Snapshot.Humidity,
		}
	}
	insights.TemperatureBand = demand.TemperatureBand(temperature)
	insights.Recommendations = Opportunities{
		Weather:     orEmpty(s.analyzer.WeatherCategories(insights.Weather.Condition)),
		Time:        orEmpty(s.analyzer.TimeCategories(insights.TimeBucket)),
		Temperature: orEmpty(s.analyzer.TemperatureCategories(insights.TemperatureBand)),
	}

	span.SetAttributes(tracing.ResultCountKey.Int(insights.TotalNearbyRequests))
	return insights, nil
}

func orEmpty(categories []string) []string {
	if categories == nil {
		return []string{}
	}
	return categories
}
