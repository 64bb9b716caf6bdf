package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OutboxRepository stores orders for later delivery.
type OutboxRepository interface {
	EnqueueOrder(ctx context.Context, orderID uuid.UUID, payload map[string]string) error
}

// OutboxSender writes orders to a transactional outbox table.
type OutboxSender struct {
	repo OutboxRepository
}

// NewOutboxSender creates an OutboxSender.
func NewOutboxSender(repo OutboxRepository) *OutboxSender {
	return &OutboxSender{repo: repo}
}

// Send enqueues the payload.
func (s *OutboxSender) Send(ctx context.Context, orderID uuid.UUID, payload map[string]string) error {
	if err := s.repo.EnqueueOrder(ctx, orderID, payload); err != nil {
		return fmt.Errorf("failed to enqueue order: %w", err)
	}

	return nil
}
