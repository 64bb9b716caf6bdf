package order

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SenderType represents the notification channel for orders.
type SenderType string

const (
	// SenderTypeLog writes orders to the application log.
	SenderTypeLog SenderType = "log"
	// SenderTypeWebhook posts orders to an HTTP endpoint.
	SenderTypeWebhook SenderType = "webhook"
	// SenderTypeSMTP mails orders to the dispatcher.
	SenderTypeSMTP SenderType = "smtp"
	// SenderTypeKafka publishes orders to a Kafka topic.
	SenderTypeKafka SenderType = "kafka"
	// SenderTypeOutbox stores orders in a Postgres outbox table.
	SenderTypeOutbox SenderType = "outbox"
)

// SenderConfig holds configuration for creating a sender.
type SenderConfig struct {
	Type         SenderType
	WebhookURL   string
	SMTP         SMTPConfig
	KafkaBrokers []string
	KafkaTopic   string
	Outbox       OutboxRepository // required by the outbox sender
	Timeout      time.Duration
	Logger       *slog.Logger
}

// NewSender creates a sender based on the provided configuration.
func NewSender(config SenderConfig) (Sender, error) {
	switch config.Type {
	case "", SenderTypeLog:
		return NewLogSender(config.Logger), nil
	case SenderTypeWebhook:
		if config.WebhookURL == "" {
			return nil, errors.New("webhook URL is required for webhook sender")
		}
		return NewWebhookSender(config.WebhookURL, config.Timeout, config.Logger), nil
	case SenderTypeSMTP:
		if config.SMTP.Host == "" || config.SMTP.To == "" {
			return nil, errors.New("SMTP host and recipient are required for smtp sender")
		}
		if config.SMTP.Timeout == 0 {
			config.SMTP.Timeout = config.Timeout
		}
		return NewSMTPSender(config.SMTP), nil
	case SenderTypeKafka:
		if len(config.KafkaBrokers) == 0 || config.KafkaTopic == "" {
			return nil, errors.New("brokers and topic are required for kafka sender")
		}
		return NewKafkaSender(config.KafkaBrokers, config.KafkaTopic, config.Timeout), nil
	case SenderTypeOutbox:
		if config.Outbox == nil {
			return nil, errors.New("repository is required for outbox sender")
		}
		return NewOutboxSender(config.Outbox), nil
	default:
		return nil, fmt.Errorf("unsupported sender type: %s", config.Type)
	}
}
