// Package viewport computes the map view that frames a trip.
package viewport

import (
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/paulmach/orb"
)

// tightPad is the half size in degrees of the view around a single point (~500 m).
const tightPad = 0.005

// Viewport is the requested visible region of the map.
type Viewport struct {
	Center models.GeoPoint
	Zoom   float64
	Bounds orb.Bound
}

// ZoomReporter reports the zoom level a map surface settles on after being
// asked to fit bounds with the given padding in pixels.
type ZoomReporter interface {
	FitZoom(bounds orb.Bound, padding float64) float64
}

// Fitter frames the trip endpoints and the route geometry.
type Fitter struct {
	surface  ZoomReporter
	padding  float64
	fallback Viewport
}

// NewFitter creates a Fitter. fallback is returned when there is nothing to frame.
func NewFitter(surface ZoomReporter, padding float64, fallback Viewport) *Fitter {
	return &Fitter{surface: surface, padding: padding, fallback: fallback}
}

// Fit returns the bounding box of the geometry and the set endpoints, its
// midpoint, and the zoom reported by the surface. A box collapsed to a single
// point is widened to a tight view around it.
func (f *Fitter) Fit(start, destination *models.GeoPoint, geometry models.RouteGeometry) Viewport {
	bound, ok := Bounds(start, destination, geometry)
	if !ok {
		return f.fallback
	}

	if bound.Min == bound.Max {
		bound = bound.Pad(tightPad)
	}

	return Viewport{
		Center: models.FromOrb(bound.Center()),
		Zoom:   f.surface.FitZoom(bound, f.padding),
		Bounds: bound,
	}
}

// Bounds computes the axis-aligned box over the geometry and the non-nil endpoints.
func Bounds(start, destination *models.GeoPoint, geometry models.RouteGeometry) (orb.Bound, bool) {
	points := make([]orb.Point, 0, len(geometry)+2)
	for _, endpoint := range []*models.GeoPoint{start, destination} {
		if endpoint != nil {
			points = append(points, endpoint.Orb())
		}
	}
	for _, p := range geometry {
		points = append(points, p.Orb())
	}

	if len(points) == 0 {
		return orb.Bound{}, false
	}

	bound := points[0].Bound()
	for _, p := range points[1:] {
		bound = bound.Extend(p)
	}

	return bound, true
}
