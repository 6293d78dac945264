// Package geo provides coordinate types and great-circle math shared by the
// opportunity scout.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates is returned when a coordinate is outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that lat is within [-90, 90] and lon within [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) ||
		c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Offset returns a new coordinate shifted by the given degrees.
func (c Coordinate) Offset(dLat, dLon float64) Coordinate {
	return Coordinate{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}

// Round returns the coordinate rounded to the given number of decimal places.
func (c Coordinate) Round(places int) Coordinate {
	return Coordinate{Lat: roundTo(c.Lat, places), Lon: roundTo(c.Lon, places)}
}

// Key returns a stable string key for the coordinate rounded to the given
// number of decimal places. 4 places is roughly 11 m at the equator.
func (c Coordinate) Key(places int) string {
	r := c.Round(places)
	return fmt.Sprintf("%.*f,%.*f", places, r.Lat, places, r.Lon)
}

// String implements fmt.Stringer.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Distance returns the haversine great-circle distance between a and b in kilometers.
func Distance(a, b Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Clamp guards asin against rounding just above 1 for antipodal points.
	if h > 1 {
		h = 1
	}

	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
