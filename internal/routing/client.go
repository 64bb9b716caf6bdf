package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
)

// Client wraps a Router with metrics and normalises its errors so that every
// failure is either ErrNoRouteFound or ErrServiceUnavailable.
type Client struct {
	router     Router
	routerName string
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// NewClient creates a route query client.
func NewClient(router Router, routerName string, metrics *metrics.Metrics, log *slog.Logger) *Client {
	return &Client{router: router, routerName: routerName, metrics: metrics, log: log}
}

// ComputeRoute returns the first route between start and destination.
func (c *Client) ComputeRoute(ctx context.Context, start, destination models.GeoPoint) (models.Route, error) {
	c.metrics.InFlightRequests.Inc()
	startTime := time.Now()
	route, err := c.router.Route(ctx, start, destination)
	c.metrics.RequestSeconds.WithLabelValues(c.routerName, "route").Observe(time.Since(startTime).Seconds())
	c.metrics.InFlightRequests.Dec()

	switch {
	case err == nil:
		c.metrics.RouteQueries.WithLabelValues("success").Inc()
		return route, nil
	case errors.Is(err, ErrNoRouteFound):
		c.metrics.RouteQueries.WithLabelValues("no_route").Inc()
		c.log.InfoContext(ctx, "No route between endpoints",
			"start", start.Label(),
			"destination", destination.Label())
		return models.Route{}, err
	case errors.Is(err, ErrServiceUnavailable):
		c.metrics.RouteQueries.WithLabelValues("unavailable").Inc()
	default:
		c.metrics.RouteQueries.WithLabelValues("unavailable").Inc()
		err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	c.log.ErrorContext(ctx, "Route query failed", "router", c.routerName, "error", err)

	return models.Route{}, err
}
