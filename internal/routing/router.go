package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/voyage/internal/models"
)

// Router computes a driving route between two points. Implementations return
// the first candidate route of the underlying directions service.
type Router interface {
	Route(ctx context.Context, start, destination models.GeoPoint) (models.Route, error)
}

// Route query failures. Both are recoverable: the caller keeps its previous route.
var (
	// ErrNoRouteFound is returned when the service answered with zero routes.
	ErrNoRouteFound = errors.New("no route found")
	// ErrServiceUnavailable is returned on network or HTTP failures.
	ErrServiceUnavailable = errors.New("routing service unavailable")
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
