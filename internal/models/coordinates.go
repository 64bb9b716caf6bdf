package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidPoint is returned when a coordinate falls outside the WGS84 ranges.
var ErrInvalidPoint = errors.New("coordinates out of range")

// GeoPoint represents a geographical point defined by its longitude and latitude.
type GeoPoint struct {
	Longitude float64 // Longitude of the geographical point, [-180, 180].
	Latitude  float64 // Latitude of the geographical point, [-90, 90].
}

// NewGeoPoint builds a GeoPoint and checks that it lies within the WGS84 ranges.
func NewGeoPoint(longitude, latitude float64) (GeoPoint, error) {
	point := GeoPoint{Longitude: longitude, Latitude: latitude}
	if err := point.Validate(); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate reports whether the point lies within the WGS84 ranges.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Longitude) || math.IsNaN(p.Latitude) ||
		p.Longitude < -180 || p.Longitude > 180 || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: lon=%f lat=%f", ErrInvalidPoint, p.Longitude, p.Latitude)
	}

	return nil
}

// Orb converts the point into an orb.Point (lon, lat order).
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Label is a coordinate based display name used until a real name is known.
func (p GeoPoint) Label() string {
	return fmt.Sprintf("%.6f, %.6f", p.Latitude, p.Longitude)
}

// FromOrb converts an orb.Point into a GeoPoint.
func FromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Longitude: p.Lon(), Latitude: p.Lat()}
}
