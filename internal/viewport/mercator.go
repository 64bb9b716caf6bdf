package viewport

import (
	"math"

	"github.com/paulmach/orb"
)

const tileSize = 256

// Mercator computes fit zooms for a Web Mercator map of a fixed pixel size.
// It stands in for a map surface that cannot report its own zoom.
type Mercator struct {
	Width   float64
	Height  float64
	MaxZoom float64
}

// FitZoom returns the largest zoom at which bounds fit inside the map minus padding.
func (m Mercator) FitZoom(bounds orb.Bound, padding float64) float64 {
	width := m.Width - 2*padding
	height := m.Height - 2*padding
	if width <= 0 || height <= 0 {
		return 0
	}

	zoom := m.MaxZoom

	lonFraction := (bounds.Max.Lon() - bounds.Min.Lon()) / 360
	if lonFraction > 0 {
		zoom = math.Min(zoom, math.Log2(width/tileSize/lonFraction))
	}

	latFraction := (mercatorY(bounds.Max.Lat()) - mercatorY(bounds.Min.Lat())) / (2 * math.Pi)
	if latFraction > 0 {
		zoom = math.Min(zoom, math.Log2(height/tileSize/latFraction))
	}

	return math.Max(0, zoom)
}

func mercatorY(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	y := math.Log((1+sin)/(1-sin)) / 2

	return math.Max(math.Min(y, math.Pi), -math.Pi)
}
