package order

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/UnknownOlympus/voyage/internal/models"
)

// Payload keys of the flat order record.
const (
	KeyOrderID         = "order_id"
	KeyStartName       = "start_name"
	KeyStartLat        = "start_lat"
	KeyStartLon        = "start_lon"
	KeyDestinationName = "destination_name"
	KeyDestinationLat  = "destination_lat"
	KeyDestinationLon  = "destination_lon"
	KeyPlan            = "plan"
	KeyPricePerKm      = "price_per_km"
	KeyDistanceKm      = "distance_km"
	KeyDuration        = "duration"
	KeyPrice           = "price"
	KeyCustomerName    = "customer_name"
	KeyCustomerPhone   = "customer_phone"
	KeyScheduledAt     = "scheduled_at"
	KeyCreatedAt       = "created_at"
)

// Payload flattens an order into the key/value record handed to the notification channel.
func Payload(order models.TripOrder) map[string]string {
	payload := map[string]string{
		KeyOrderID:         order.ID.String(),
		KeyStartName:       order.Start.DisplayName,
		KeyDestinationName: order.Destination.DisplayName,
		KeyPlan:            order.Plan.Name,
		KeyPricePerKm:      formatFloat(order.Plan.PricePerKm),
		KeyDistanceKm:      strconv.FormatFloat(order.Metrics.DistanceKm, 'f', 1, 64),
		KeyDuration:        order.Metrics.DurationLabel,
		KeyPrice:           formatFloat(order.Price),
		KeyCustomerName:    order.CustomerName,
		KeyCustomerPhone:   order.CustomerPhone,
		KeyScheduledAt:     order.ScheduledAt.Format(time.RFC3339),
		KeyCreatedAt:       order.CreatedAt.UTC().Format(time.RFC3339),
	}

	if p := order.Start.Point; p != nil {
		payload[KeyStartLat] = formatCoord(p.Latitude)
		payload[KeyStartLon] = formatCoord(p.Longitude)
	}
	if p := order.Destination.Point; p != nil {
		payload[KeyDestinationLat] = formatCoord(p.Latitude)
		payload[KeyDestinationLon] = formatCoord(p.Longitude)
	}

	return payload
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func sortedKeys(payload map[string]string) []string {
	return slices.Sorted(maps.Keys(payload))
}
