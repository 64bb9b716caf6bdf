package routing

import (
	"fmt"
	"math"
	"strings"

	"github.com/UnknownOlympus/voyage/internal/models"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// FormatDuration renders seconds as days, hours and minutes ("1 д 1 ч 1 м").
// Zero higher units are omitted and minutes are shown whenever nothing else is.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	days := math.Floor(seconds / secondsPerDay)
	seconds = math.Mod(seconds, secondsPerDay)
	hours := math.Floor(seconds / secondsPerHour)
	seconds = math.Mod(seconds, secondsPerHour)
	minutes := math.Floor(seconds / secondsPerMinute)

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d д", int64(days)))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d ч", int64(hours)))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d м", int64(minutes)))
	}

	return strings.Join(parts, " ")
}

// RoundKm converts meters to kilometers rounded to one decimal.
func RoundKm(meters float64) float64 {
	return math.Round(meters/100) / 10
}

// TripMetrics derives the displayed trip metrics from a route.
func TripMetrics(route models.Route) models.TripMetrics {
	return models.TripMetrics{
		DistanceKm:    RoundKm(route.DistanceMeters),
		DurationLabel: FormatDuration(route.DurationSeconds),
	}
}
