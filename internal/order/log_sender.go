package order

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes orders to the log. It is the default channel for local runs.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the payload at warn level so it survives the production log level.
func (s *LogSender) Send(ctx context.Context, orderID uuid.UUID, payload map[string]string) error {
	attrs := make([]any, 0, len(payload)*2+2)
	attrs = append(attrs, "order_id", orderID)
	for _, key := range sortedKeys(payload) {
		attrs = append(attrs, key, payload[key])
	}

	s.log.WarnContext(ctx, "New trip order", attrs...)

	return nil
}
