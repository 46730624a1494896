// Package demand holds the pure lookups that relate weather, temperature and
// time of day to the kinds of help people tend to ask for.
package demand

import (
	"sort"
	"strings"
	"time"
)

// Bucket is a coarse time-of-day period.
type Bucket string

const (
	BucketMorning   Bucket = "morning"
	BucketAfternoon Bucket = "afternoon"
	BucketEvening   Bucket = "evening"
	BucketNight     Bucket = "night"
)

// Band is a coarse temperature range.
type Band string

const (
	BandHot      Band = "hot"
	BandCold     Band = "cold"
	BandModerate Band = "moderate"
)

const (
	hotAboveC  = 28.0
	coldBelowC = 10.0
)

// TimeBucket maps an hour of day (0-23) to its bucket:
// morning 6-11, afternoon 12-16, evening 17-20, night otherwise.
func TimeBucket(hour int) Bucket {
	switch {
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 21:
		return BucketEvening
	default:
		return BucketNight
	}
}

// BucketAt returns the bucket for t in loc (t's own location when loc is nil).
func BucketAt(t time.Time, loc *time.Location) Bucket {
	if loc != nil {
		t = t.In(loc)
	}
	return TimeBucket(t.Hour())
}

// TemperatureBand classifies a temperature in °C; unknown is moderate.
func TemperatureBand(temp *float64) Band {
	if temp == nil {
		return BandModerate
	}
	switch {
	case *temp > hotAboveC:
		return BandHot
	case *temp < coldBelowC:
		return BandCold
	default:
		return BandModerate
	}
}

// IsHot reports whether temp is above the heat-relief threshold.
func IsHot(temp *float64) bool { return TemperatureBand(temp) == BandHot }

// IsCold reports whether temp is below the cold-relief threshold.
func IsCold(temp *float64) bool { return TemperatureBand(temp) == BandCold }

// Analyzer answers category questions against an immutable set of Tables.
type Analyzer struct {
	tables Tables
}

// NewAnalyzer creates an analyzer over a private copy of tables.
func NewAnalyzer(tables Tables) *Analyzer {
	return &Analyzer{tables: tables.clone()}
}

// WeatherCategories returns the union of categories for every table key that
// appears (case-insensitively) inside condition, sorted for stable output.
func (a *Analyzer) WeatherCategories(condition string) []string {
	condition = strings.ToLower(condition)
	if condition == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for key, categories := range a.tables.Weather {
		if !strings.Contains(condition, strings.ToLower(key)) {
			continue
		}
		for _, c := range categories {
			seen[c] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// TemperatureCategories returns the categories for a temperature band.
func (a *Analyzer) TemperatureCategories(band Band) []string {
	return append([]string(nil), a.tables.Temperature[band]...)
}

// TimeCategories returns the categories for a time bucket.
func (a *Analyzer) TimeCategories(bucket Bucket) []string {
	return append([]string(nil), a.tables.TimeOfDay[bucket]...)
}

// IsRainRelief reports whether category contains a rain-relief keyword.
func (a *Analyzer) IsRainRelief(category string) bool {
	return containsAny(category, a.tables.RainRelief)
}

// IsHeatRelief reports whether category contains a heat-relief keyword.
func (a *Analyzer) IsHeatRelief(category string) bool {
	return containsAny(category, a.tables.HeatRelief)
}

// IsColdRelief reports whether category contains a cold-relief keyword.
func (a *Analyzer) IsColdRelief(category string) bool {
	return containsAny(category, a.tables.ColdRelief)
}

// InTimeTable reports whether category is listed for bucket.
func (a *Analyzer) InTimeTable(category string, bucket Bucket) bool {
	return listed(category, a.tables.TimeOfDay[bucket])
}

// InWeatherTable reports whether category is listed for condition.
func (a *Analyzer) InWeatherTable(category, condition string) bool {
	return listed(category, a.WeatherCategories(condition))
}

func containsAny(category string, keywords []string) bool {
	category = strings.ToLower(category)
	if category == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(category, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func listed(category string, categories []string) bool {
	for _, c := range categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
