package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deseos_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deseos_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Payments counts orchestrator outcomes: approved, checkout_created, rejected, invalid,
	// conflict, gateway_error, error.
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deseos_payments_total",
		Help: "Payment attempts by flow and outcome.",
	}, []string{"flow", "outcome"})

	Webhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deseos_webhooks_total",
		Help: "Gateway webhook deliveries by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	GatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deseos_gateway_call_duration_seconds",
		Help:    "Latency of outbound payment gateway calls.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"gateway", "operation", "result"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deseos_notification_failures_total",
		Help: "Notification deliveries that failed, by channel.",
	}, []string{"channel"})
)
