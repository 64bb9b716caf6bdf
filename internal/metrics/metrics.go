package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupRequests   *prometheus.CounterVec
	RouteQueries     *prometheus.CounterVec
	StaleResponses   *prometheus.CounterVec
	OrdersSubmitted  *prometheus.CounterVec
	RequestSeconds   *prometheus.HistogramVec
	InFlightRequests prometheus.Gauge
	RelayDeliveries  *prometheus.CounterVec
	ActiveWorkers    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "voyage_lookup_requests_total",
			Help: "Total number of geocoding lookups by kind (search, reverse) and status.",
		}, []string{"kind", "status"}),
		RouteQueries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "voyage_route_queries_total",
			Help: "Total number of route queries by outcome.",
		}, []string{"status"}),
		StaleResponses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "voyage_stale_responses_total",
			Help: "Total number of asynchronous responses discarded because a newer request superseded them.",
		}, []string{"channel"}),
		OrdersSubmitted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "voyage_orders_submitted_total",
			Help: "Total number of orders handed to the notification channel by status.",
		}, []string{"status"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voyage_provider_request_duration_seconds",
			Help:    "Duration of requests to external geocoding and routing providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		InFlightRequests: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "voyage_inflight_requests",
			Help: "Current number of provider requests in flight.",
		}),
		RelayDeliveries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "voyage_outbox_deliveries_total",
			Help: "Total number of outbox orders relayed downstream by status.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "voyage_outbox_active_workers",
			Help: "Current number of relay workers delivering an order.",
		}),
	}
}
