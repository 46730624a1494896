package demand

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables is the static category knowledge behind scoring and explanations.
// A Tables value is treated as immutable once handed to an Analyzer.
type Tables struct {
	// Weather maps a provider condition label (e.g. "Rain") to categories.
	Weather map[string][]string `yaml:"weather"`
	// Temperature maps a Band to categories.
	Temperature map[Band][]string `yaml:"temperature"`
	// TimeOfDay maps a Bucket to categories.
	TimeOfDay map[Bucket][]string `yaml:"time_of_day"`

	// Keyword sets matched as substrings of a request category by the scorer.
	RainRelief []string `yaml:"rain_relief"`
	HeatRelief []string `yaml:"heat_relief"`
	ColdRelief []string `yaml:"cold_relief"`
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Weather: map[string][]string{
			"Rain":         {"umbrella", "waterproof", "ride", "groceries"},
			"Drizzle":      {"umbrella", "ride", "groceries"},
			"Thunderstorm": {"emergency", "ride", "medicine"},
			"Snow":         {"ride", "groceries", "emergency"},
			"Clear":        {"outdoor_activity", "sports", "gardening"},
			"Clouds":       {"outdoor_activity", "repair", "tutoring"},
			"Mist":         {"ride", "groceries"},
			"Smoke":        {"medicine", "air_purifier"},
			"Haze":         {"medicine", "air_purifier"},
			"Dust":         {"medicine", "cleaning_supplies"},
			"Fog":          {"ride", "groceries"},
			"Sand":         {"emergency", "ride"},
			"Ash":          {"medicine", "emergency"},
			"Squall":       {"emergency"},
			"Tornado":      {"emergency"},
		},
		Temperature: map[Band][]string{
			BandHot:      {"water_delivery", "cooling_fan", "ice_cream", "beverages"},
			BandCold:     {"blanket", "heater", "warm_clothes", "tea_coffee"},
			BandModerate: {"groceries", "outdoor_activity", "repair"},
		},
		TimeOfDay: map[Bucket][]string{
			BucketMorning:   {"groceries", "breakfast", "delivery", "ride_to_work"},
			BucketAfternoon: {"lunch", "repair", "tutoring", "outdoor_activity"},
			BucketEvening:   {"dinner", "groceries", "delivery", "ride_back_home"},
			BucketNight:     {"emergency", "medicine", "security", "ride"},
		},
		RainRelief: []string{"umbrella", "waterproof", "ride", "delivery"},
		HeatRelief: []string{"water", "cooling", "ice", "beverage"},
		ColdRelief: []string{"blanket", "heater", "warm", "clothes"},
	}
}

// LoadTables reads table overrides from a YAML file. Sections absent from the
// file keep their default values.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("read demand tables: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return tables, fmt.Errorf("parse demand tables %s: %w", path, err)
	}

	if override.Weather != nil {
		tables.Weather = override.Weather
	}
	if override.Temperature != nil {
		tables.Temperature = override.Temperature
	}
	if override.TimeOfDay != nil {
		tables.TimeOfDay = override.TimeOfDay
	}
	if override.RainRelief != nil {
		tables.RainRelief = override.RainRelief
	}
	if override.HeatRelief != nil {
		tables.HeatRelief = override.HeatRelief
	}
	if override.ColdRelief != nil {
		tables.ColdRelief = override.ColdRelief
	}
	return tables, nil
}

// clone deep-copies t so callers cannot mutate an Analyzer's tables.
func (t Tables) clone() Tables {
	out := Tables{
		Weather:     make(map[string][]string, len(t.Weather)),
		Temperature: make(map[Band][]string, len(t.Temperature)),
		TimeOfDay:   make(map[Bucket][]string, len(t.TimeOfDay)),
		RainRelief:  append([]string(nil), t.RainRelief...),
		HeatRelief:  append([]string(nil), t.HeatRelief...),
		ColdRelief:  append([]string(nil), t.ColdRelief...),
	}
	for k, v := range t.Weather {
		out.Weather[k] = append([]string(nil), v...)
	}
	for k, v := range t.Temperature {
		out.Temperature[k] = append([]string(nil), v...)
	}
	for k, v := range t.TimeOfDay {
		out.TimeOfDay[k] = append([]string(nil), v...)
	}
	return out
}
