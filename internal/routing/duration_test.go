package routing_test

import (
	"testing"

	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/routing"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0 м"},
		{name: "under a minute", seconds: 59, want: "0 м"},
		{name: "minutes only", seconds: 125, want: "2 м"},
		{name: "hours and minutes", seconds: 3700, want: "1 ч 1 м"},
		{name: "exact hour", seconds: 3600, want: "1 ч"},
		{name: "day and hour", seconds: 90000, want: "1 д 1 ч"},
		{name: "all units", seconds: 90061, want: "1 д 1 ч 1 м"},
		{name: "day and minutes", seconds: 86400 + 120, want: "1 д 2 м"},
		{name: "negative is clamped", seconds: -10, want: "0 м"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routing.FormatDuration(tt.seconds))
		})
	}
}

func TestRoundKm(t *testing.T) {
	assert.InDelta(t, 12.3, routing.RoundKm(12345), 1e-9)
	assert.InDelta(t, 12.4, routing.RoundKm(12350), 1e-9)
	assert.InDelta(t, 0, routing.RoundKm(0), 1e-9)
	assert.InDelta(t, 0.1, routing.RoundKm(50), 1e-9)
}

func TestTripMetrics(t *testing.T) {
	metrics := routing.TripMetrics(models.Route{DistanceMeters: 12345, DurationSeconds: 3700})

	assert.InDelta(t, 12.3, metrics.DistanceKm, 1e-9)
	assert.Equal(t, "1 ч 1 м", metrics.DurationLabel)
}
