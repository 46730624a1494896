package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used for great-circle distances.
	EarthRadiusKm = 6371.0

	// boxMargin widens prefilter boxes so float rounding never excludes a
	// point that Haversine places on the circle.
	boxMargin = 1.001
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the WGS84 range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Haversine calculates the great-circle distance in kilometres between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := lat2Rad - lat1Rad
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// asin form; clamp guards against a drifting slightly above 1 for antipodes
	c := 2 * math.Asin(math.Sqrt(math.Min(1, a)))
	return EarthRadiusKm * c
}

// Distance is Haversine over two Coordinates.
func Distance(from, to Coordinate) float64 {
	return Haversine(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// RoundKm rounds a distance to two decimal places.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// BoundingBox is an axis-aligned lat/lng box.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// BoundingBoxAround returns a box that fully contains the circle of radiusKm
// around origin, measured on the same sphere as Haversine. It is a coarse
// prefilter; callers must still apply Haversine. When the circle reaches a
// pole the longitude span widens to the full range.
func BoundingBoxAround(origin Coordinate, radiusKm float64) BoundingBox {
	angular := radiusKm / EarthRadiusKm * boxMargin
	dLat := angular * 180 / math.Pi
	box := BoundingBox{
		MinLatitude:  math.Max(-90, origin.Latitude-dLat),
		MaxLatitude:  math.Min(90, origin.Latitude+dLat),
		MinLongitude: -180,
		MaxLongitude: 180,
	}

	cosLat := math.Cos(origin.Latitude * math.Pi / 180.0)
	sinAngular := math.Sin(math.Min(angular, math.Pi/2))
	if angular >= math.Pi/2 || sinAngular >= cosLat {
		return box
	}
	// Widest longitude offset of a spherical cap centred at origin.
	dLon := math.Asin(sinAngular/cosLat) * 180 / math.Pi
	box.MinLongitude = origin.Longitude - dLon
	box.MaxLongitude = origin.Longitude + dLon
	// Boxes that cross the antimeridian are widened rather than split.
	if box.MinLongitude < -180 || box.MaxLongitude > 180 {
		box.MinLongitude = -180
		box.MaxLongitude = 180
	}
	return box
}

// Contains reports whether c falls inside the box.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}
