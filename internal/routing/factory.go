package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// RouterType represents the directions service backing the router.
type RouterType string

const (
	// RouterTypeMapbox represents Mapbox Directions API.
	RouterTypeMapbox RouterType = "mapbox"
	// RouterTypeOSRM represents an OSRM server.
	RouterTypeOSRM RouterType = "osrm"
	// RouterTypeGoogle represents Google Directions API.
	RouterTypeGoogle RouterType = "google"
)

// RouterConfig holds configuration for creating a router.
type RouterConfig struct {
	Type      RouterType    // Type of router to create
	APIKey    string        // Mapbox token or Google API key
	BaseURL   string        // Custom OSRM server
	Profile   string        // Routing profile, "driving" by default
	Language  string        // Language of instructions
	RateLimit int           // Requests per second, 0 disables limiting
	Timeout   time.Duration // HTTP timeout
	Logger    *slog.Logger
}

// NewRouter creates a router based on the provided configuration.
func NewRouter(config RouterConfig) (Router, error) {
	switch config.Type {
	case RouterTypeMapbox:
		if config.APIKey == "" {
			return nil, errors.New("access token is required for Mapbox router")
		}
		return NewMapboxRouter(config.APIKey, config.Profile, config.RateLimit, config.Timeout, config.Logger), nil
	case RouterTypeOSRM:
		return NewOSRMRouter(config.BaseURL, config.Profile, config.RateLimit, config.Timeout, config.Logger), nil
	case RouterTypeGoogle:
		if config.APIKey == "" {
			return nil, errors.New("API key is required for Google router")
		}
		opts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
		if config.RateLimit > 0 {
			opts = append(opts, maps.WithRateLimit(config.RateLimit))
		}
		client, err := maps.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
		}
		return NewGoogleRouter(client, config.Language, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported router type: %s", config.Type)
	}
}
