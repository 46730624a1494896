package suggestions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
)

const (
	veryCloseKm     = 1.0
	nearbyKm        = 3.0
	expiringWithin  = 6 * time.Hour
	fallbackPhrase  = "Good match nearby"
	phraseSeparator = ". "
)

// ExplanationInput is everything an explanation may refer to.
type ExplanationInput struct {
	Candidate requests.NearbyRequest
	Weather   *weather.Snapshot
	Bucket    demand.Bucket
	// Trending maps lower-cased category to its recent request count.
	Trending map[string]int
	Now      time.Time
}

// Explainer turns ranking signals into a short sentence.
type Explainer struct {
	scorer   *Scorer
	analyzer *demand.Analyzer
}

// NewExplainer creates an explainer sharing the scorer's weather rules.
func NewExplainer(scorer *Scorer, analyzer *demand.Analyzer) *Explainer {
	return &Explainer{scorer: scorer, analyzer: analyzer}
}

// Explain joins the phrases that apply, in a fixed order: weather,
// proximity, urgency, time of day, expiry, trending.
func (e *Explainer) Explain(in ExplanationInput) string {
	c := in.Candidate
	var parts []string

	if p := e.weatherPhrase(c.Category, in.Weather); p != "" {
		parts = append(parts, p)
	}
	if p := proximityPhrase(c.DistanceKm); p != "" {
		parts = append(parts, p)
	}
	if p := urgencyPhrase(c.Urgency); p != "" {
		parts = append(parts, p)
	}
	if p := e.timePhrase(c.Category, c.TimeWindow, in.Bucket); p != "" {
		parts = append(parts, p)
	}
	if expiringSoon(&c.CandidateRequest, in.Now) {
		parts = append(parts, "Expiring soon")
	}
	if p := trendingPhrase(in.Trending[strings.ToLower(c.Category)]); p != "" {
		parts = append(parts, p)
	}

	if len(parts) == 0 {
		parts = append(parts, fallbackPhrase)
	}
	return strings.Join(parts, phraseSeparator) + "."
}

func (e *Explainer) weatherPhrase(category string, snapshot *weather.Snapshot) string {
	switch e.scorer.WeatherMatch(category, snapshot) {
	case WeatherMatchRain:
		return "Great for rainy weather"
	case WeatherMatchHeat:
		return "Helpful in hot weather"
	case WeatherMatchCold:
		return "Helpful in cold weather"
	}
	if snapshot != nil && e.analyzer.InWeatherTable(category, snapshot.Condition) {
		return fmt.Sprintf("Matches current %s weather", strings.ToLower(snapshot.Condition))
	}
	return ""
}

func proximityPhrase(distanceKm float64) string {
	km := strconv.FormatFloat(round2(distanceKm), 'f', -1, 64)
	switch {
	case distanceKm < veryCloseKm:
		return "Very close to you (" + km + " km)"
	case distanceKm < nearbyKm:
		return "Nearby (" + km + " km)"
	}
	return ""
}

func urgencyPhrase(urgency string) string {
	switch strings.ToLower(strings.TrimSpace(urgency)) {
	case requests.UrgencyEmergency:
		return "Emergency request"
	case requests.UrgencyHigh:
		return "High priority"
	}
	return ""
}

func (e *Explainer) timePhrase(category, timeWindow string, bucket demand.Bucket) string {
	switch timeAlignment(timeWindow, bucket) {
	case alignFlexible:
		return "Flexible timing"
	case alignBucket:
		return "Needed this " + string(bucket)
	}
	if e.analyzer.InTimeTable(category, bucket) {
		return "Often needed in the " + string(bucket)
	}
	return ""
}

func expiringSoon(c *requests.CandidateRequest, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	left := c.ExpiresAt.Sub(now)
	return left > 0 && left < expiringWithin
}

func trendingPhrase(count int) string {
	switch {
	case count == 1:
		return "Trending need"
	case count > 1:
		return fmt.Sprintf("Popular request (%d similar)", count)
	}
	return ""
}
