package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics counts cart mutations, checkouts and payment callbacks.
type StorefrontMetrics struct {
	cartOps   *prometheus.CounterVec
	checkouts *prometheus.CounterVec
	callbacks *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront counters on reg. A nil reg
// yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart operations by operation and result.",
	}, []string{"op", "result"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Checkout attempts by payment method and result.",
	}, []string{"method", "result"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payment_callbacks_total",
		Help: "Payment provider redirects by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(cartOps, checkouts, callbacks)
	return &StorefrontMetrics{
		cartOps:   cartOps,
		checkouts: checkouts,
		callbacks: callbacks,
	}
}

// IncCartOp counts one cart operation.
func (m *StorefrontMetrics) IncCartOp(op, result string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// IncCheckout counts one checkout attempt.
func (m *StorefrontMetrics) IncCheckout(method, result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(method), normalizeLabel(result)).Inc()
}

// IncCallback counts one payment callback.
func (m *StorefrontMetrics) IncCallback(outcome string) {
	if m == nil || m.callbacks == nil {
		return
	}
	m.callbacks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
