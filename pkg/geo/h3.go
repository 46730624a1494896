package geo

import (
	"github.com/uber/h3-go/v4"
)

// H3 resolution levels.
// See: https://h3geo.org/docs/core-library/restable
const (
	// H3ResolutionWeather buckets coordinates for weather caching (~1.2 km edge, ~5.16 km²).
	// Weather does not change meaningfully inside one cell.
	H3ResolutionWeather = 7
)

// LatLngToCell converts latitude/longitude to an H3 cell index at the given resolution.
// Returns the zero cell on invalid input.
func LatLngToCell(lat, lng float64, resolution int) h3.Cell {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), resolution)
	if err != nil {
		return 0
	}
	return cell
}

// WeatherCell returns the H3 cell (as hex string) used to share weather
// lookups between nearby coordinates. Empty when the coordinate is invalid.
func WeatherCell(lat, lng float64) string {
	cell := LatLngToCell(lat, lng, H3ResolutionWeather)
	if cell == 0 {
		return ""
	}
	return cell.String()
}
