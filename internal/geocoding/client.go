package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
)

// MinQueryLength is the shortest query sent to the provider, in runes.
const MinQueryLength = 3

// ErrLookupFailed wraps any provider failure reported by the Client.
var ErrLookupFailed = errors.New("geocoding lookup failed")

// Client wraps a Provider with the lookup rules used by the trip planner:
// short queries never leave the process and provider failures degrade to
// empty results instead of propagating.
type Client struct {
	provider     Provider
	providerName string
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// NewClient creates a lookup client on top of a provider.
func NewClient(provider Provider, providerName string, metrics *metrics.Metrics, log *slog.Logger) *Client {
	return &Client{
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		log:          log,
	}
}

// SearchByText returns the candidates for a free text query.
//
// Queries shorter than MinQueryLength return no results without a network call.
// On failure the result is an empty slice together with an error wrapping ErrLookupFailed,
// the caller only reports it.
func (c *Client) SearchByText(ctx context.Context, query string) ([]models.Place, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		c.metrics.LookupRequests.WithLabelValues("search", "skipped").Inc()
		return []models.Place{}, nil
	}

	var places []models.Place
	err := c.observe(ctx, "search", func(ctx context.Context) error {
		var err error
		places, err = c.provider.Search(ctx, query)
		return err
	})
	if err != nil {
		if isEmptyResult(err) {
			c.metrics.LookupRequests.WithLabelValues("search", "empty").Inc()
			return []models.Place{}, nil
		}

		c.metrics.LookupRequests.WithLabelValues("search", "failure").Inc()
		c.log.ErrorContext(ctx, "Forward lookup failed", "query", query, "provider", c.providerName, "error", err)
		return []models.Place{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	c.metrics.LookupRequests.WithLabelValues("search", "success").Inc()

	return places, nil
}

// ReverseLookup returns the display name for a point, or an empty string and
// an error wrapping ErrLookupFailed.
func (c *Client) ReverseLookup(ctx context.Context, point models.GeoPoint) (string, error) {
	var name string
	err := c.observe(ctx, "reverse", func(ctx context.Context) error {
		var err error
		name, err = c.provider.Reverse(ctx, point)
		return err
	})
	if err != nil {
		status := "failure"
		if isEmptyResult(err) {
			status = "empty"
		}
		c.metrics.LookupRequests.WithLabelValues("reverse", status).Inc()
		c.log.WarnContext(ctx, "Reverse lookup failed",
			"lat", point.Latitude,
			"lon", point.Longitude,
			"provider", c.providerName,
			"error", err)
		return "", fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	c.metrics.LookupRequests.WithLabelValues("reverse", "success").Inc()

	return name, nil
}

func (c *Client) observe(ctx context.Context, operation string, call func(context.Context) error) error {
	c.metrics.InFlightRequests.Inc()
	defer c.metrics.InFlightRequests.Dec()

	startTime := time.Now()
	err := call(ctx)
	c.metrics.RequestSeconds.WithLabelValues(c.providerName, operation).Observe(time.Since(startTime).Seconds())

	return err
}

func isEmptyResult(err error) bool {
	return errors.Is(err, ErrNominatimEmptyResponse) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrVisicomEmptyResponse)
}
