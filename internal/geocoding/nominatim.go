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

// NominatimBaseURL is the public OpenStreetMap Nominatim endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// nominatimSearchLimit is the number of candidates requested per search.
const nominatimSearchLimit = 30

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client       HTTPClient    // HTTP client for making requests
	baseURL      string        // Base URL for the Nominatim API
	log          *slog.Logger  // Logger for logging operations
	limiter      *rate.Limiter // Rate limiter shared by search and reverse requests
	countryCodes string        // Comma separated ISO 3166-1 country filter
	language     string        // Preferred response language
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimPlace represents one element of the JSON search response.
type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// nominatimReverse represents the JSON reverse response.
type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// defaultTimeout applies when the configuration leaves the HTTP timeout unset.
const defaultTimeout = 10 * time.Second

const nominatimUserAgent = "Voyage-Trip-Planner/1.0 (https://github.com/UnknownOlympus/voyage)"

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(
	countryCodes, language string,
	rateLimit int,
	timeout time.Duration,
	log *slog.Logger,
) *NominatimProvider {
	if rateLimit <= 0 {
		rateLimit = 1
	}

	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout},
		countryCodes,
		language,
		rate.NewLimiter(rate.Limit(rateLimit), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	countryCodes, language string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		client:       client,
		baseURL:      NominatimBaseURL,
		log:          log,
		limiter:      limiter,
		countryCodes: countryCodes,
		language:     language,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: nominatimUserAgent,
	}
}

// Search looks up free text using the Nominatim search endpoint.
//
// Only candidates whose display name contains the query (case-insensitive) are kept.
// When a query yields nothing, progressively simpler variants are tried:
// 1. Full text (e.g. "с. Грабовець, вул. Польова, 3")
// 2. Text without the last component (e.g. "с. Грабовець, вул. Польова")
// 3. Text without the last two components
// 4. First component only (e.g. "с. Грабовець")
func (np *NominatimProvider) Search(ctx context.Context, query string) ([]models.Place, error) {
	np.log.DebugContext(ctx, "Searching using Nominatim", "query", query)

	variations := np.generateAddressFallbacks(query)

	for idx, variation := range variations {
		places, err := np.searchSingle(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Search matched using fallback query",
					"original", query,
					"fallback", variation,
					"fallback_level", idx)
			}
			return places, nil
		}

		// If it's not an empty response error, return immediately (API error, undecodable body)
		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Query variation returned no results, trying fallback",
			"variation", variation,
			"fallback_level", idx)
	}

	np.log.DebugContext(ctx, "All query fallbacks exhausted", "query", query, "variations_tried", len(variations))
	return nil, ErrNominatimEmptyResponse
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func (np *NominatimProvider) generateAddressFallbacks(address string) []string {
	if address == "" {
		return []string{""}
	}

	// Use a map to track unique variations and preserve order
	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		// Remove last component (usually house number)
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		// Try just the first component (village/town/city)
		addVariation(parts[0])
	}

	return variations
}

// searchSingle performs a single search request without fallback logic.
func (np *NominatimProvider) searchSingle(ctx context.Context, query string) ([]models.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", fmt.Sprint(nominatimSearchLimit))
	if np.countryCodes != "" {
		params.Set("countrycodes", np.countryCodes)
	}
	if np.language != "" {
		params.Set("accept-language", np.language)
	}

	body, err := np.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var results []nominatimPlace
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	needle := strings.ToLower(query)
	places := make([]models.Place, 0, len(results))
	for _, result := range results {
		if !strings.Contains(strings.ToLower(result.DisplayName), needle) {
			continue
		}

		point, errPoint := parseNominatimPoint(result.Lat, result.Lon)
		if errPoint != nil {
			np.log.DebugContext(ctx, "Skipping Nominatim candidate with bad coordinates",
				"place_id", result.PlaceID,
				"error", errPoint)
			continue
		}

		places = append(places, models.Place{
			ID:          fmt.Sprint(result.PlaceID),
			Point:       point,
			DisplayName: result.DisplayName,
		})
	}

	if len(places) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	np.log.DebugContext(ctx, "Nominatim found results", "query", query, "count", len(places))

	return places, nil
}

// Reverse resolves a coordinate into the display name of the closest address.
func (np *NominatimProvider) Reverse(ctx context.Context, point models.GeoPoint) (string, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "lat", point.Latitude, "lon", point.Longitude)

	params := url.Values{}
	params.Set("lat", fmt.Sprint(point.Latitude))
	params.Set("lon", fmt.Sprint(point.Longitude))
	params.Set("format", "json")
	if np.language != "" {
		params.Set("accept-language", np.language)
	}

	body, err := np.get(ctx, "/reverse", params)
	if err != nil {
		return "", err
	}

	var result nominatimReverse
	if err = json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if result.DisplayName == "" {
		return "", ErrNominatimEmptyResponse
	}

	return result.DisplayName, nil
}

// get performs a rate limited GET request against the given Nominatim path.
func (np *NominatimProvider) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	reqURL.RawQuery = params.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	if np.language != "" {
		req.Header.Set("Accept-Language", np.language)
	}

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	return body, nil
}

func parseNominatimPoint(rawLat, rawLon string) (models.GeoPoint, error) {
	var lat, lon float64
	if _, err := fmt.Sscanf(rawLat, "%f", &lat); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, rawLat)
	}
	if _, err := fmt.Sscanf(rawLon, "%f", &lon); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, rawLon)
	}

	point, err := models.NewGeoPoint(lon, lat)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrNominatimInvalidCoords, err)
	}

	return point, nil
}
