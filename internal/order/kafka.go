package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the sender uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes each order as a JSON message keyed by the order id.
type KafkaSender struct {
	writer MessageWriter
}

// NewKafkaSender creates a sender writing to topic on the given brokers.
func NewKafkaSender(brokers []string, topic string, timeout time.Duration) *KafkaSender {
	return NewKafkaSenderWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: timeout,
	})
}

// NewKafkaSenderWithWriter allows injecting a custom writer.
func NewKafkaSenderWithWriter(writer MessageWriter) *KafkaSender {
	return &KafkaSender{writer: writer}
}

// Send publishes the payload.
func (s *KafkaSender) Send(ctx context.Context, orderID uuid.UUID, payload map[string]string) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("trip.order.created")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}

	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
