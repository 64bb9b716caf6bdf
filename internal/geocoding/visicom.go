package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/voyage/internal/models"
	"golang.org/x/time/rate"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

// visicomSearchLimit is the number of candidates requested per search.
const visicomSearchLimit = 30

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Visicom API
	apiKey  string        // API key with geocoding access
	country string        // Country filter, empty means all
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = errors.New("visicom API returned empty response")
	ErrVisicomEmptyAddress  = errors.New("visicom provider got empty address")
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnathorized   = errors.New("visicom API unathorized (invalid API key)")
)

type visicomFeature struct {
	ID         string `json:"id"`
	Properties struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		Street     string `json:"street"`
		Settlement string `json:"settlement"`
		Country    string `json:"country"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// Visicom answers with a single Feature for limit=1 and a FeatureCollection otherwise.
type visicomResponse struct {
	Type     string           `json:"type"`
	Features []visicomFeature `json:"features"`
	visicomFeature
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(
	apiKey, countryCodes string,
	rateLimit int,
	timeout time.Duration,
	log *slog.Logger,
) *VisicomProvider {
	return NewVisicomProviderWithClient(
		&http.Client{Timeout: timeout},
		apiKey,
		countryCodes,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey, countryCodes string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	country, _, _ := strings.Cut(countryCodes, ",")

	return &VisicomProvider{
		client:  client,
		baseURL: VisicomBaseURL,
		apiKey:  apiKey,
		country: strings.TrimSpace(country),
		log:     log,
		limiter: limiter,
	}
}

// Search converts free text into candidate places using Visicom API.
func (vp *VisicomProvider) Search(ctx context.Context, query string) ([]models.Place, error) {
	vp.log.DebugContext(ctx, "Searching using Visicom", "query", query)

	if query == "" {
		return nil, ErrVisicomEmptyAddress
	}

	params := url.Values{}
	params.Set("text", query)
	params.Set("limit", fmt.Sprint(visicomSearchLimit))
	if vp.country != "" {
		params.Set("country", vp.country)
	}

	features, err := vp.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(features))
	for _, feature := range features {
		place, errPlace := feature.place()
		if errPlace != nil {
			return nil, errPlace
		}
		places = append(places, place)
	}

	vp.log.InfoContext(ctx, "Visicom found results", "query", query, "count", len(places))

	return places, nil
}

// Reverse returns the name of the address nearest to the point.
func (vp *VisicomProvider) Reverse(ctx context.Context, point models.GeoPoint) (string, error) {
	vp.log.DebugContext(ctx, "Reverse geocoding using Visicom", "lat", point.Latitude, "lon", point.Longitude)

	params := url.Values{}
	params.Set("near", fmt.Sprintf("%f,%f", point.Longitude, point.Latitude))
	params.Set("categories", "adr_address")
	params.Set("limit", "1")

	features, err := vp.fetch(ctx, params)
	if err != nil {
		return "", err
	}

	place, err := features[0].place()
	if err != nil {
		return "", err
	}

	return place.DisplayName, nil
}

func (vp *VisicomProvider) fetch(ctx context.Context, params url.Values) ([]visicomFeature, error) {
	// Rate limit
	if err := vp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(vp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params.Set("key", vp.apiKey)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Headers
	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrVisicomUnathorized
	default:
		body, _ := io.ReadAll(resp.Body)
		vp.log.ErrorContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("visicom API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	vp.log.DebugContext(ctx, "Visicom raw response", "body", string(body))

	var result visicomResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode visicom response: %w", err)
	}

	features := result.Features
	if result.Type == "Feature" {
		features = []visicomFeature{result.visicomFeature}
	}

	if len(features) == 0 {
		return nil, ErrVisicomEmptyResponse
	}

	return features, nil
}

func (f visicomFeature) place() (models.Place, error) {
	const coordsListLength = 2

	coords := f.Geometry.Coordinates
	if len(coords) == 0 {
		return models.Place{}, ErrVisicomEmptyResponse
	}
	if len(coords) != coordsListLength {
		return models.Place{}, ErrVisicomInvalidCoords
	}

	point, err := models.NewGeoPoint(coords[0], coords[1])
	if err != nil {
		return models.Place{}, fmt.Errorf("%w: %w", ErrVisicomInvalidCoords, err)
	}

	parts := make([]string, 0, 4)
	for _, part := range []string{f.Properties.Name, f.Properties.Street, f.Properties.Settlement, f.Properties.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return models.Place{ID: f.ID, Point: point, DisplayName: strings.Join(parts, ", ")}, nil
}
