// Package order hands submitted trip orders to an external notification channel.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/google/uuid"
)

// ErrSubmissionFailed wraps any failure of the notification channel.
var ErrSubmissionFailed = errors.New("order submission failed")

// Sender delivers a flat order payload.
type Sender interface {
	Send(ctx context.Context, orderID uuid.UUID, payload map[string]string) error
}

// Adapter packages orders and passes them to a Sender. It never validates
// business rules; the caller submits only complete orders.
type Adapter struct {
	sender     Sender
	senderName string
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// NewAdapter creates a submission adapter.
func NewAdapter(sender Sender, senderName string, metrics *metrics.Metrics, log *slog.Logger) *Adapter {
	return &Adapter{sender: sender, senderName: senderName, metrics: metrics, log: log}
}

// Submit sends the order. Failures are logged and returned wrapped in ErrSubmissionFailed.
func (a *Adapter) Submit(ctx context.Context, order models.TripOrder) error {
	payload := Payload(order)

	if err := a.sender.Send(ctx, order.ID, payload); err != nil {
		a.metrics.OrdersSubmitted.WithLabelValues("failure").Inc()
		a.log.ErrorContext(ctx, "Failed to deliver order",
			"order_id", order.ID,
			"sender", a.senderName,
			"error", err)
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	a.metrics.OrdersSubmitted.WithLabelValues("success").Inc()
	a.log.InfoContext(ctx, "Order delivered", "order_id", order.ID, "sender", a.senderName)

	return nil
}
