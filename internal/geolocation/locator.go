// Package geolocation provides the one-shot device position used to seed the
// starting point of a session.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/voyage/internal/models"
)

// ErrGeolocationDenied is returned when the position is unavailable for any reason.
var ErrGeolocationDenied = errors.New("geolocation denied or unavailable")

// Locator reports the current device position.
type Locator interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// Disabled never reports a position.
type Disabled struct{}

// Locate always fails with ErrGeolocationDenied.
func (Disabled) Locate(context.Context) (models.GeoPoint, error) {
	return models.GeoPoint{}, ErrGeolocationDenied
}

// Static reports a fixed, configured position.
type Static struct {
	Point models.GeoPoint
}

// Locate returns the configured point.
func (s Static) Locate(ctx context.Context) (models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrGeolocationDenied, err)
	}

	return s.Point, nil
}

// ParsePoint parses a "lon,lat" pair.
func ParsePoint(value string) (models.GeoPoint, error) {
	lonStr, latStr, found := strings.Cut(value, ",")
	if !found {
		return models.GeoPoint{}, fmt.Errorf("%w: expected \"lon,lat\", got %q", models.ErrInvalidPoint, value)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: bad longitude: %w", models.ErrInvalidPoint, err)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: bad latitude: %w", models.ErrInvalidPoint, err)
	}

	return models.NewGeoPoint(lon, lat)
}
