package geocoding

import (
	"context"

	"github.com/UnknownOlympus/voyage/internal/models"
)

// Provider is an interface that defines forward and reverse geocoding.
// Search takes free text and returns the matching candidates, Reverse takes
// a coordinate and returns the display name of the closest address.
type Provider interface {
	Search(ctx context.Context, query string) ([]models.Place, error)
	Reverse(ctx context.Context, point models.GeoPoint) (string, error)
}
