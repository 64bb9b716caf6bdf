package coordinator

import (
	"math"

	"github.com/UnknownOlympus/voyage/internal/trip"
)

// Price returns the trip price for the selected plan. The second value is false
// while there is nothing to show: no plan selected or no route with a positive distance.
func Price(s trip.State) (float64, bool) {
	if s.Plan == nil || !s.HasRoute() {
		return 0, false
	}

	// Multiply in tenths so 12.3 km at 100 per km is exactly 1230.
	tenths := math.Round(s.Route.Metrics.DistanceKm * 10)

	return tenths * s.Plan.PricePerKm / 10, true
}
