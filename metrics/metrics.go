// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "minishop"

type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	ReceiptsIssued      prometheus.Counter
	ReceiptTotal        prometheus.Histogram
	CartClearFailures   prometheus.Counter
	CartAdds            *prometheus.CounterVec
	CatalogCacheResults *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ReceiptsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_issued_total",
			Help:      "Checkout receipts issued.",
		}),
		ReceiptTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "receipt_total_amount",
			Help:      "Distribution of receipt totals.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		CartClearFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_clear_failures_total",
			Help:      "Cart clears after checkout that failed and were only logged.",
		}),
		CartAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_adds_total",
			Help:      "Cart additions, split by whether a new line was created or an existing one merged.",
		}, []string{"result"}),
		CatalogCacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_requests_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.ReceiptsIssued,
		m.ReceiptTotal,
		m.CartClearFailures,
		m.CartAdds,
		m.CatalogCacheResults,
	)
	return m
}

// NewNop returns collectors registered on a throwaway registry. Handy in tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) CartAdded(merged bool) {
	if merged {
		m.CartAdds.WithLabelValues("merged").Inc()
		return
	}
	m.CartAdds.WithLabelValues("new").Inc()
}

func (m *Metrics) CacheHit()  { m.CatalogCacheResults.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.CatalogCacheResults.WithLabelValues("miss").Inc() }

func (m *Metrics) ReceiptIssued(total float64) {
	m.ReceiptsIssued.Inc()
	m.ReceiptTotal.Observe(total)
}
