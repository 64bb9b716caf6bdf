package models

import "github.com/paulmach/orb"

// RouteGeometry is the ordered path polyline. An empty geometry means no route was computed.
type RouteGeometry []GeoPoint

// LineString converts the geometry into an orb.LineString.
func (g RouteGeometry) LineString() orb.LineString {
	line := make(orb.LineString, 0, len(g))
	for _, p := range g {
		line = append(line, p.Orb())
	}

	return line
}

// GeometryFromLineString converts an orb.LineString into a RouteGeometry.
func GeometryFromLineString(line orb.LineString) RouteGeometry {
	geometry := make(RouteGeometry, 0, len(line))
	for _, p := range line {
		geometry = append(geometry, FromOrb(p))
	}

	return geometry
}

// Route is the first candidate returned by a directions service.
type Route struct {
	Geometry        RouteGeometry
	DistanceMeters  float64
	DurationSeconds float64
}

// TripMetrics are derived from the route and reset together with it.
type TripMetrics struct {
	DistanceKm    float64 // Distance rounded to one decimal.
	DurationLabel string  // Human readable duration, e.g. "1 ч 1 м".
}
