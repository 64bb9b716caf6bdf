package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/voyage/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleDirectionsClient is the subset of the Google Maps client used for routing.
type GoogleDirectionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleRouter computes routes with the Google Directions API.
type GoogleRouter struct {
	client   GoogleDirectionsClient
	language string
	log      *slog.Logger
}

// NewGoogleRouter creates a GoogleRouter on top of a maps client.
func NewGoogleRouter(client GoogleDirectionsClient, language string, log *slog.Logger) *GoogleRouter {
	return &GoogleRouter{client: client, language: language, log: log}
}

// Route returns the first driving route between start and destination.
func (gr *GoogleRouter) Route(ctx context.Context, start, destination models.GeoPoint) (models.Route, error) {
	req := &maps.DirectionsRequest{
		Origin:      formatLatLng(start),
		Destination: formatLatLng(destination),
		Mode:        maps.TravelModeDriving,
		Language:    gr.language,
	}

	routes, _, err := gr.client.Directions(ctx, req)
	if err != nil {
		// The client turns every non-OK status into an error, ZERO_RESULTS included.
		if strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND") {
			return models.Route{}, fmt.Errorf("%w: %w", ErrNoRouteFound, err)
		}
		return models.Route{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	if len(routes) == 0 {
		return models.Route{}, ErrNoRouteFound
	}

	first := routes[0]
	points, err := first.OverviewPolyline.Decode()
	if err != nil {
		return models.Route{}, fmt.Errorf("%w: failed to decode polyline: %w", ErrServiceUnavailable, err)
	}

	route := models.Route{Geometry: make(models.RouteGeometry, 0, len(points))}
	for _, p := range points {
		route.Geometry = append(route.Geometry, models.GeoPoint{Longitude: p.Lng, Latitude: p.Lat})
	}
	for _, leg := range first.Legs {
		route.DistanceMeters += float64(leg.Distance.Meters)
		route.DurationSeconds += leg.Duration.Seconds()
	}

	gr.log.DebugContext(ctx, "Google directions found route",
		"distance_m", route.DistanceMeters,
		"duration_s", route.DurationSeconds)

	return route, nil
}

func formatLatLng(p models.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Latitude, p.Longitude)
}
