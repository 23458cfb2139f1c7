package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	APIRequests     *prometheus.CounterVec
	APIDuration     *prometheus.HistogramVec
	APIErrors       *prometheus.CounterVec
	OrderSyncs      *prometheus.CounterVec
	CheckoutRejects prometheus.Counter
}

// NewMetrics creates the service metrics and registers them with reg.
// Passing nil registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pargo_api_requests_total",
				Help: "Total number of Pargo API requests by resource, method, and outcome",
			},
			[]string{"resource", "method", "status"},
		),
		APIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pargo_api_request_duration_seconds",
				Help:    "Pargo API request duration in seconds by resource",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pargo_api_errors_total",
				Help: "Total Pargo API errors by error type",
			},
			[]string{"error_type"},
		),
		OrderSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pargo_order_sync_total",
				Help: "Order synchronization cycles by terminal state",
			},
			[]string{"state"},
		),
		CheckoutRejects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pargo_checkout_missing_pickup_point_total",
				Help: "Shipping method confirmations rejected because no pickup point was chosen",
			},
		),
	}
}

// RecordRequest records a Pargo API request.
func (m *Metrics) RecordRequest(resource, method, status string, duration float64) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(resource, method, status).Inc()
	m.APIDuration.WithLabelValues(resource, method).Observe(duration)
}

// RecordError records a Pargo API error.
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.APIErrors.WithLabelValues(errorType).Inc()
}

// RecordSync records the terminal state of one order sync cycle.
func (m *Metrics) RecordSync(state string) {
	if m == nil {
		return
	}
	m.OrderSyncs.WithLabelValues(state).Inc()
}

// RecordCheckoutReject counts a rejected shipping method confirmation.
func (m *Metrics) RecordCheckoutReject() {
	if m == nil {
		return
	}
	m.CheckoutRejects.Inc()
}
