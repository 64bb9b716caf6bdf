package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/voyage/internal/models"
)

// IPAPIBaseURL is the ip-api.com JSON endpoint.
const IPAPIBaseURL = "http://ip-api.com/json/"

// HTTPClient interface for making HTTP requests (allows mocking).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPAPILocator estimates the position from the public IP address.
type IPAPILocator struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

// NewIPAPILocator creates a locator backed by ip-api.com.
func NewIPAPILocator(timeout time.Duration, log *slog.Logger) *IPAPILocator {
	return NewIPAPILocatorWithClient(&http.Client{Timeout: timeout}, IPAPIBaseURL, log)
}

// NewIPAPILocatorWithClient allows injecting a custom HTTP client.
func NewIPAPILocatorWithClient(client HTTPClient, baseURL string, log *slog.Logger) *IPAPILocator {
	return &IPAPILocator{client: client, baseURL: baseURL, log: log}
}

// Locate asks ip-api.com for the position of the caller. Every failure is
// reported as ErrGeolocationDenied.
func (l *IPAPILocator) Locate(ctx context.Context) (models.GeoPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: failed to create request: %w", ErrGeolocationDenied, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrGeolocationDenied, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GeoPoint{}, fmt.Errorf("%w: ip-api returned status %d", ErrGeolocationDenied, resp.StatusCode)
	}

	var result ipAPIResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: failed to decode ip-api response: %w", ErrGeolocationDenied, err)
	}

	if result.Status != "success" {
		return models.GeoPoint{}, fmt.Errorf("%w: %s", ErrGeolocationDenied, result.Message)
	}

	point, err := models.NewGeoPoint(result.Lon, result.Lat)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrGeolocationDenied, err)
	}

	l.log.DebugContext(ctx, "Located by IP", "lat", point.Latitude, "lon", point.Longitude)

	return point, nil
}
