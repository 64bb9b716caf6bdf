package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/google/uuid"
)

// maxDeliveryAttempts is the number of failed deliveries after which an order is no longer retried.
const maxDeliveryAttempts = 5

const ensureSchemaQuery = `
	CREATE TABLE IF NOT EXISTS order_outbox (
		order_id     UUID PRIMARY KEY,
		payload      JSONB NOT NULL,
		attempts     INT NOT NULL DEFAULT 0,
		last_error   TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		delivered_at TIMESTAMPTZ
	);
`

const enqueueOrderQuery = `
	INSERT INTO order_outbox (order_id, payload)
	VALUES ($1, $2)
	ON CONFLICT (order_id) DO NOTHING;
`

// EnsureSchema creates the outbox table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, ensureSchemaQuery); err != nil {
		return fmt.Errorf("failed to create order outbox: %w", err)
	}

	return nil
}

// EnqueueOrder stores the order payload for delivery. Enqueueing the same
// order twice keeps the first record.
func (r *Repository) EnqueueOrder(ctx context.Context, orderID uuid.UUID, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order payload: %w", err)
	}

	tag, err := r.db.Exec(ctx, enqueueOrderQuery, orderID, body)
	if err != nil {
		return fmt.Errorf("failed to enqueue order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.log.WarnContext(ctx, "Order already enqueued", "order_id", orderID)
		return nil
	}

	r.log.DebugContext(ctx, "Order enqueued", "order_id", orderID)

	return nil
}

// FetchPendingOrders retrieves undelivered orders that have fewer than
// maxDeliveryAttempts failed deliveries, oldest first.
func (r *Repository) FetchPendingOrders(ctx context.Context, limit int) ([]models.OutboxOrder, error) {
	var orders []models.OutboxOrder
	query := `
		SELECT order_id, payload, attempts
		FROM order_outbox
		WHERE
			delivered_at IS NULL
			AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, maxDeliveryAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			order models.OutboxOrder
			body  []byte
		)
		if errScan := rows.Scan(&order.ID, &body, &order.Attempts); errScan != nil {
			return nil, fmt.Errorf("failed to scan pending order: %w", errScan)
		}
		if errDecode := json.Unmarshal(body, &order.Payload); errDecode != nil {
			return nil, fmt.Errorf("failed to decode payload of order %s: %w", order.ID, errDecode)
		}
		r.log.DebugContext(ctx, "A pending order has been received.", "order_id", order.ID, "attempts", order.Attempts)
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return orders, nil
}

// MarkDelivered records the successful delivery of an order.
func (r *Repository) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	query := `
		UPDATE order_outbox
		SET
			delivered_at = now(),
			last_error = NULL
		WHERE
			order_id = $1;
	`

	if _, err := r.db.Exec(ctx, query, orderID); err != nil {
		return fmt.Errorf("failed to mark order delivered: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the delivery attempt count of an order
// and stores the error message of the last attempt.
func (r *Repository) IncrementFailureCount(ctx context.Context, orderID uuid.UUID, errMsg string) error {
	query := `
		UPDATE order_outbox
		SET
			attempts = attempts + 1,
			last_error = $1
		WHERE order_id = $2;
	`

	if _, err := r.db.Exec(ctx, query, errMsg, orderID); err != nil {
		return fmt.Errorf("failed to update delivery error and number of attempts: %w", err)
	}

	return nil
}
