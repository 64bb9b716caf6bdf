package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/test/mocks"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProcessBatch(t *testing.T) {
	mockRepo := mocks.NewInterface(t)
	mockSender := mocks.NewSender(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	metrics := metrics.NewMetrics(reg)
	ctx := t.Context()
	service := NewRelayService(logger, mockRepo, mockSender, "webhook", metrics, 2, 1*time.Second)

	firstID := uuid.MustParse("7d5c9b0a-3c2e-4f57-9d1e-8a1f0c2b3d4e")
	secondID := uuid.MustParse("0b7e1f7a-9a51-4c4e-8a43-2d9fb1f3c0aa")
	payload := map[string]string{"price": "1230"}

	t.Run("successfull delivery", func(t *testing.T) {
		orders := []models.OutboxOrder{{ID: firstID, Payload: payload}}

		mockRepo.On("FetchPendingOrders", ctx, 100).Return(orders, nil).Once()
		mockSender.On("Send", ctx, firstID, payload).Return(nil).Once()
		mockRepo.On("MarkDelivered", ctx, firstID).Return(nil).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.RelayDeliveries.WithLabelValues("success")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(metrics.ActiveWorkers), 0)
	})

	t.Run("fetch orders return error", func(t *testing.T) {
		mockRepo.On("FetchPendingOrders", ctx, 100).Return(nil, assert.AnError).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})

	t.Run("fetch orders return empty list", func(t *testing.T) {
		mockRepo.On("FetchPendingOrders", ctx, 100).Return([]models.OutboxOrder{}, nil).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})

	t.Run("sender returns error", func(t *testing.T) {
		orders := []models.OutboxOrder{{ID: secondID, Payload: payload, Attempts: 2}}

		mockRepo.On("FetchPendingOrders", ctx, 100).Return(orders, nil).Once()
		mockSender.On("Send", ctx, secondID, payload).Return(assert.AnError).Once()
		mockRepo.On("IncrementFailureCount", ctx, secondID, assert.AnError.Error()).Return(nil).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.RelayDeliveries.WithLabelValues("failure")), 0)
	})

	t.Run("error to increment failure count", func(t *testing.T) {
		orders := []models.OutboxOrder{{ID: secondID, Payload: payload}}

		mockRepo.On("FetchPendingOrders", ctx, 100).Return(orders, nil).Once()
		mockSender.On("Send", ctx, secondID, payload).Return(assert.AnError).Once()
		mockRepo.On("IncrementFailureCount", ctx, secondID, assert.AnError.Error()).Return(assert.AnError).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})

	t.Run("error to mark delivered", func(t *testing.T) {
		orders := []models.OutboxOrder{{ID: firstID, Payload: payload}}

		mockRepo.On("FetchPendingOrders", ctx, 100).Return(orders, nil).Once()
		mockSender.On("Send", ctx, firstID, payload).Return(nil).Once()
		mockRepo.On("MarkDelivered", ctx, firstID).Return(assert.AnError).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})

	t.Run("batch is spread over the workers", func(t *testing.T) {
		orders := []models.OutboxOrder{{ID: firstID, Payload: payload}, {ID: secondID, Payload: payload}}

		mockRepo.On("FetchPendingOrders", ctx, 100).Return(orders, nil).Once()
		mockSender.On("Send", ctx, mock.Anything, payload).Return(nil).Twice()
		mockRepo.On("MarkDelivered", ctx, firstID).Return(nil).Once()
		mockRepo.On("MarkDelivered", ctx, secondID).Return(nil).Once()

		service.processBatch(ctx)

		mockRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})
}

func TestRun(t *testing.T) {
	mockRepo := mocks.NewInterface(t)
	mockSender := mocks.NewSender(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	metrics := metrics.NewMetrics(prometheus.NewRegistry())
	service := NewRelayService(logger, mockRepo, mockSender, "webhook", metrics, 0, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	polled := make(chan struct{})
	var once sync.Once

	mockRepo.On("FetchPendingOrders", mock.Anything, 100).
		Run(func(mock.Arguments) { once.Do(func() { close(polled) }) }).
		Return([]models.OutboxOrder{}, nil)

	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("relay did not poll the outbox")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancellation")
	}

	assert.Equal(t, 1, service.numWorkers)
}
