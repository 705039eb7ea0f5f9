package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PackagesComposed     prometheus.Counter
	BookingsCreated      prometheus.Counter
	ReviewTransitions    *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	PaymentOrders        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics creates the service metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PackagesComposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_composed_total",
			Help:      "The total number of packages composed",
		}),
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		ReviewTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_transitions_total",
			Help:      "Review status transitions applied by employees",
		}, []string{"subject", "status"}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Emails that could not be delivered",
		}, []string{"template"}),
		PaymentOrders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_orders_total",
			Help:      "Payment orders requested from the payment provider",
		}, []string{"result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
