// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersCreated counts successfully persisted orders.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Total number of orders created",
	})

	// OrdersReplayed counts order requests answered from an existing
	// order via the payment-reference idempotency check.
	OrdersReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_replayed_total",
		Help: "Total number of idempotent order replays",
	})

	// OrdersFailed counts failed order creations by reason.
	OrdersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	// VariantsGenerated counts variants produced by the attribute
	// combinator.
	VariantsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_variants_generated_total",
		Help: "Total number of variants generated from option axes",
	})

	// HTTPRequests counts handled HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
