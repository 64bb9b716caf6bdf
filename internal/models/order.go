package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingPlan is a static catalog entry.
type PricingPlan struct {
	ID         string   `mapstructure:"id"`
	Name       string   `mapstructure:"name"`
	PricePerKm float64  `mapstructure:"price_per_km"`
	Image      string   `mapstructure:"image"`
	Vehicles   []string `mapstructure:"vehicles"`
}

// TripOrder is the snapshot built at submission time and handed to the notification channel.
type TripOrder struct {
	ID            uuid.UUID
	Start         NamedLocation
	Destination   NamedLocation
	Plan          PricingPlan
	Metrics       TripMetrics
	Price         float64
	CustomerName  string
	CustomerPhone string
	ScheduledAt   time.Time
	CreatedAt     time.Time
}

// OutboxOrder is an order payload waiting in the outbox for delivery.
type OutboxOrder struct {
	ID       uuid.UUID
	Payload  map[string]string
	Attempts int
}
