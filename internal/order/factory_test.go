package order_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/voyage/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name     string
		config   order.SenderConfig
		wantType any
		wantErr  string
	}{
		{name: "default is log", config: order.SenderConfig{}, wantType: &order.LogSender{}},
		{name: "log", config: order.SenderConfig{Type: order.SenderTypeLog}, wantType: &order.LogSender{}},
		{
			name:     "webhook",
			config:   order.SenderConfig{Type: order.SenderTypeWebhook, WebhookURL: "https://dispatch.example"},
			wantType: &order.WebhookSender{},
		},
		{name: "webhook without url", config: order.SenderConfig{Type: order.SenderTypeWebhook}, wantErr: "webhook URL is required"},
		{
			name: "smtp",
			config: order.SenderConfig{
				Type: order.SenderTypeSMTP,
				SMTP: order.SMTPConfig{Host: "smtp.example", Port: 587, To: "dispatch@example.com"},
			},
			wantType: &order.SMTPSender{},
		},
		{name: "smtp without host", config: order.SenderConfig{Type: order.SenderTypeSMTP}, wantErr: "SMTP host and recipient"},
		{
			name:     "kafka",
			config:   order.SenderConfig{Type: order.SenderTypeKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "trip-orders"},
			wantType: &order.KafkaSender{},
		},
		{name: "kafka without brokers", config: order.SenderConfig{Type: order.SenderTypeKafka, KafkaTopic: "t"}, wantErr: "brokers and topic"},
		{
			name:     "outbox",
			config:   order.SenderConfig{Type: order.SenderTypeOutbox, Outbox: &fakeOutbox{}},
			wantType: &order.OutboxSender{},
		},
		{name: "outbox without repository", config: order.SenderConfig{Type: order.SenderTypeOutbox}, wantErr: "repository is required"},
		{name: "unsupported", config: order.SenderConfig{Type: "pigeon"}, wantErr: "unsupported sender type: pigeon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Logger = logger
			tt.config.Timeout = time.Second

			sender, err := order.NewSender(tt.config)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, sender)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, sender)
		})
	}
}
