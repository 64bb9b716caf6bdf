package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/voyage/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	country  string          // country restricts forward results, empty means worldwide
	language string          // language of the formatted addresses
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
// Only the first of the comma separated country codes is used as a component filter.
func NewGoogleProvider(client GoogleAPIClient, countryCodes, language string, log *slog.Logger) *GoogleProvider {
	country, _, _ := strings.Cut(countryCodes, ",")

	return &GoogleProvider{
		client:   client,
		country:  strings.TrimSpace(country),
		language: language,
		log:      log,
	}
}

// Search takes free text and returns the candidates found by the Google Maps Geocoding API.
func (gp *GoogleProvider) Search(ctx context.Context, query string) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Searching using Google Maps", "query", query)

	req := maps.GeocodingRequest{Address: query, Language: gp.language}
	if gp.country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: gp.country}
	}

	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	places := make([]models.Place, 0, len(results))
	for _, result := range results {
		location := result.Geometry.Location
		places = append(places, models.Place{
			ID:          result.PlaceID,
			Point:       models.GeoPoint{Longitude: location.Lng, Latitude: location.Lat},
			DisplayName: result.FormattedAddress,
		})
	}

	return places, nil
}

// Reverse returns the formatted address closest to the point.
func (gp *GoogleProvider) Reverse(ctx context.Context, point models.GeoPoint) (string, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", point.Latitude, "lon", point.Longitude)

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: point.Latitude, Lng: point.Longitude},
		Language: gp.language,
	}

	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode point: %w", err)
	}

	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", ErrEmptyResponse
	}

	return results[0].FormattedAddress, nil
}
