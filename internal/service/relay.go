package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/order"
	"github.com/UnknownOlympus/voyage/internal/repository"
)

// batchLimit is the number of pending orders fetched per poll.
const batchLimit = 100

// RelayService delivers orders stored in the outbox to a downstream sender.
type RelayService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Outbox access
	sender       order.Sender         // Downstream delivery channel
	senderName   string               // Name of the sender for logging
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Number of concurrent workers for delivery
	pollInterval time.Duration        // Interval for polling the outbox
}

// NewRelayService creates a new instance of RelayService.
func NewRelayService(
	log *slog.Logger,
	repo repository.Interface,
	sender order.Sender,
	senderName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *RelayService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &RelayService{
		log:          log,
		repo:         repo,
		sender:       sender,
		senderName:   senderName,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run periodically polls the outbox until the context is canceled.
func (rs *RelayService) Run(ctx context.Context) {
	ticker := time.NewTicker(rs.pollInterval)
	defer ticker.Stop()

	rs.log.InfoContext(ctx, "Outbox relay started...", "sender", rs.senderName)

	for {
		select {
		case <-ctx.Done():
			rs.log.InfoContext(ctx, "Outbox relay stopped.")
			return
		case <-ticker.C:
			rs.log.DebugContext(ctx, "Polling the outbox for pending orders...")
			rs.processBatch(ctx)
		}
	}
}

// processBatch fetches pending orders and delivers them with a worker pool.
func (rs *RelayService) processBatch(ctx context.Context) {
	orders, err := rs.repo.FetchPendingOrders(ctx, batchLimit)
	if err != nil {
		rs.log.ErrorContext(ctx, "Failed to fetch pending orders", "error", err)
		return
	}
	if len(orders) == 0 {
		rs.log.DebugContext(ctx, "No orders to relay.")
		return
	}

	rs.log.InfoContext(ctx, "Found orders to relay. Starting worker pool.",
		"jobs", len(orders),
		"num_workers", rs.numWorkers)

	jobs := make(chan models.OutboxOrder, len(orders))
	var wgr sync.WaitGroup

	for i := 1; i <= rs.numWorkers; i++ {
		wgr.Add(1)
		go rs.worker(ctx, i, &wgr, jobs)
	}

	for _, o := range orders {
		jobs <- o
	}
	close(jobs)

	wgr.Wait()
	rs.log.InfoContext(ctx, "Relay batch finished")
}

// worker delivers orders from the jobs channel. A failed delivery increments
// the attempt counter of the order, a successful one marks it delivered.
func (rs *RelayService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.OutboxOrder) {
	defer wg.Done()
	for job := range jobs {
		rs.metrics.ActiveWorkers.Inc()
		rs.log.DebugContext(ctx, "Relaying order", "worker", idx, "order_id", job.ID)

		if err := rs.sender.Send(ctx, job.ID, job.Payload); err != nil {
			rs.log.ErrorContext(ctx, "Failed to relay order", "worker", idx, "order_id", job.ID, "error", err)
			rs.metrics.RelayDeliveries.WithLabelValues("failure").Inc()

			if err = rs.repo.IncrementFailureCount(ctx, job.ID, err.Error()); err != nil {
				rs.log.ErrorContext(ctx, "Could not update failure count for order",
					"worker", idx,
					"order_id", job.ID,
					"error", err)
			}
			rs.metrics.ActiveWorkers.Dec()
			continue
		}

		rs.metrics.RelayDeliveries.WithLabelValues("success").Inc()

		if err := rs.repo.MarkDelivered(ctx, job.ID); err != nil {
			rs.log.ErrorContext(ctx, "Failed to mark order delivered", "worker", idx, "order_id", job.ID, "error", err)
		} else {
			rs.log.DebugContext(ctx, "Worker successfully relayed the order", "worker", idx, "order_id", job.ID)
		}

		rs.metrics.ActiveWorkers.Dec()
	}
}
