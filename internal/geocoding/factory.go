package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType names a geocoding backend.
type ProviderType string

const (
	ProviderTypeGoogle    ProviderType = "google"
	ProviderTypeNominatim ProviderType = "nominatim"
	ProviderTypeVisicom   ProviderType = "visicom"
)

// visicomDefaultRate is used when no rate limit is configured for Visicom.
const visicomDefaultRate = 5

// ErrMissingAPIKey is returned for providers that cannot work anonymously.
var ErrMissingAPIKey = errors.New("API key is required")

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type         ProviderType
	APIKey       string        // Google and Visicom
	BaseURL      string        // self-hosted Nominatim, empty for the public instance
	RateLimit    int           // requests per second
	CountryCodes string        // forward search filter, e.g. "ru"
	Language     string        // preferred language of display names
	Timeout      time.Duration // HTTP timeout of the Nominatim and Visicom clients
	Logger       *slog.Logger
}

// NewProvider creates the geocoding provider selected by config.Type.
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	switch config.Type {
	case ProviderTypeNominatim:
		provider := NewNominatimProvider(config.CountryCodes, config.Language, config.RateLimit, config.Timeout, config.Logger)
		if config.BaseURL != "" {
			provider.baseURL = config.BaseURL
		}
		return provider, nil
	case ProviderTypeGoogle:
		if config.APIKey == "" {
			return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, config.Type)
		}

		opts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
		if config.RateLimit > 0 {
			opts = append(opts, maps.WithRateLimit(config.RateLimit))
		}
		client, err := maps.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
		}
		return NewGoogleProvider(client, config.CountryCodes, config.Language, config.Logger), nil
	case ProviderTypeVisicom:
		if config.APIKey == "" {
			return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, config.Type)
		}

		if config.RateLimit <= 0 {
			config.RateLimit = visicomDefaultRate
			config.Logger.Warn("Rate limit for Visicom API not set, using the default", "value", config.RateLimit)
		}
		return NewVisicomProvider(config.APIKey, config.CountryCodes, config.RateLimit, config.Timeout, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %q", config.Type)
	}
}
