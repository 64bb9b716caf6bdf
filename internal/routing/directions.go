package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/time/rate"
)

const (
	// MapboxBaseURL is the Mapbox Directions API v5 endpoint.
	MapboxBaseURL = "https://api.mapbox.com/directions/v5/mapbox"
	// OSRMBaseURL is the public OSRM demo server.
	OSRMBaseURL = "https://router.project-osrm.org/route/v1"
)

// directionsResponse covers the subset shared by Mapbox Directions and OSRM.
type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry *geojson.Geometry `json:"geometry"`
		Distance float64           `json:"distance"` // meters
		Duration float64           `json:"duration"` // seconds
	} `json:"routes"`
}

// DirectionsRouter queries a Mapbox compatible directions API. OSRM speaks the
// same protocol, so the router serves both with a different base URL.
type DirectionsRouter struct {
	client  HTTPClient
	baseURL string
	profile string // e.g. "driving"
	token   string // Mapbox access token, empty for OSRM
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewMapboxRouter creates a router backed by Mapbox Directions.
func NewMapboxRouter(token, profile string, rateLimit int, timeout time.Duration, log *slog.Logger) *DirectionsRouter {
	return NewDirectionsRouterWithClient(
		&http.Client{Timeout: timeout},
		MapboxBaseURL,
		profile,
		token,
		newLimiter(rateLimit),
		log,
	)
}

// NewOSRMRouter creates a router backed by an OSRM server.
func NewOSRMRouter(baseURL, profile string, rateLimit int, timeout time.Duration, log *slog.Logger) *DirectionsRouter {
	if baseURL == "" {
		baseURL = OSRMBaseURL
	}

	return NewDirectionsRouterWithClient(&http.Client{Timeout: timeout}, baseURL, profile, "", newLimiter(rateLimit), log)
}

// NewDirectionsRouterWithClient allows injecting a custom HTTP client.
func NewDirectionsRouterWithClient(
	client HTTPClient,
	baseURL, profile, token string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *DirectionsRouter {
	if profile == "" {
		profile = "driving"
	}

	return &DirectionsRouter{
		client:  client,
		baseURL: baseURL,
		profile: profile,
		token:   token,
		limiter: limiter,
		log:     log,
	}
}

// Route returns the first route between start and destination.
func (dr *DirectionsRouter) Route(ctx context.Context, start, destination models.GeoPoint) (models.Route, error) {
	if err := dr.limiter.Wait(ctx); err != nil {
		return models.Route{}, fmt.Errorf("%w: rate limit: %w", ErrServiceUnavailable, err)
	}

	reqURL, err := url.Parse(fmt.Sprintf("%s/%s/%s;%s",
		dr.baseURL, dr.profile, formatLonLat(start), formatLonLat(destination)))
	if err != nil {
		return models.Route{}, fmt.Errorf("failed to parse directions URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("geometries", "geojson")
	query.Set("steps", "true")
	query.Set("overview", "full")
	if dr.token != "" {
		query.Set("access_token", dr.token)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return models.Route{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := dr.client.Do(req)
	if err != nil {
		return models.Route{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Route{}, fmt.Errorf("%w: failed to read response body: %w", ErrServiceUnavailable, err)
	}

	var result directionsResponse
	decodeErr := json.Unmarshal(body, &result)

	// Both APIs report unroutable pairs through the code field, sometimes with a 4xx status.
	if decodeErr == nil && (result.Code == "NoRoute" || result.Code == "NoSegment") {
		return models.Route{}, fmt.Errorf("%w: %s", ErrNoRouteFound, result.Message)
	}

	if resp.StatusCode != http.StatusOK {
		dr.log.ErrorContext(ctx, "Directions API error", "status", resp.StatusCode, "body", string(body))
		return models.Route{}, fmt.Errorf("%w: directions API returned status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	if decodeErr != nil {
		return models.Route{}, fmt.Errorf("%w: failed to decode directions response: %w", ErrServiceUnavailable, decodeErr)
	}

	if len(result.Routes) == 0 {
		return models.Route{}, ErrNoRouteFound
	}

	first := result.Routes[0]
	var line orb.LineString
	if first.Geometry != nil && first.Geometry.Coordinates != nil {
		var ok bool
		if line, ok = first.Geometry.Coordinates.(orb.LineString); !ok {
			return models.Route{}, fmt.Errorf("%w: unexpected geometry type %s",
				ErrServiceUnavailable, first.Geometry.Coordinates.GeoJSONType())
		}
	}

	dr.log.DebugContext(ctx, "Directions found route",
		"distance_m", first.Distance,
		"duration_s", first.Duration,
		"points", len(line))

	return models.Route{
		Geometry:        models.GeometryFromLineString(line),
		DistanceMeters:  first.Distance,
		DurationSeconds: first.Duration,
	}, nil
}

func formatLonLat(p models.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Longitude, p.Latitude)
}

func newLimiter(rateLimit int) *rate.Limiter {
	if rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
}
