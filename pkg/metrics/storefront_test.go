package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncCartOp("add_item", "ok")
	m.IncCartOp("add_item", "ok")
	m.IncCheckout("COD", "")
	m.IncCallback("order_created")

	require.Equal(t, 2.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add_item", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("COD", "unknown")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.callbacks.WithLabelValues("order_created")))
}

func TestStorefrontMetricsNilSafe(t *testing.T) {
	var m *StorefrontMetrics
	m.IncCartOp("x", "y")
	NewStorefrontMetrics(nil).IncCheckout("COD", "ok")
}
