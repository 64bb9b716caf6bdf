package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient interface for making HTTP requests (allows mocking).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookSender posts the payload as a JSON object.
type WebhookSender struct {
	client HTTPClient
	url    string
	log    *slog.Logger
}

// NewWebhookSender creates a WebhookSender with a default HTTP client.
func NewWebhookSender(url string, timeout time.Duration, log *slog.Logger) *WebhookSender {
	return NewWebhookSenderWithClient(&http.Client{Timeout: timeout}, url, log)
}

// NewWebhookSenderWithClient allows injecting a custom HTTP client.
func NewWebhookSenderWithClient(client HTTPClient, url string, log *slog.Logger) *WebhookSender {
	return &WebhookSender{client: client, url: url, log: log}
}

// Send posts the payload. Any non 2xx status is an error.
func (s *WebhookSender) Send(ctx context.Context, orderID uuid.UUID, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", orderID.String())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		s.log.ErrorContext(ctx, "Webhook error", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
