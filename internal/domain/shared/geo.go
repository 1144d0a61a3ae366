package shared

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// GeoPoint represents an immutable WGS84 coordinate pair
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewGeoPoint creates a new geo point with range validation
func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return nil, NewValidationError("lat", fmt.Sprintf("latitude %f out of range [-90, 90]", lat))
	}
	if lng < -180 || lng > 180 {
		return nil, NewValidationError("lng", fmt.Sprintf("longitude %f out of range [-180, 180]", lng))
	}
	return &GeoPoint{Lat: lat, Lng: lng}, nil
}

// HaversineKm calculates the great-circle distance to another point in kilometers
func (p GeoPoint) HaversineKm(other GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Key returns a stable string key for coordinate deduplication.
// Six decimal places (~0.1 m) so that identical locations collapse to one matrix slot.
func (p GeoPoint) Key() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}
