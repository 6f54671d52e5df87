package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	// vec collectors only show up once a label set has been touched
	m.HTTPRequests.WithLabelValues("/api/products", "GET", "200").Inc()
	m.HTTPDuration.WithLabelValues("/api/products", "GET").Observe(0.01)
	m.CartAdded(false)
	m.CacheHit()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestCartAdded(t *testing.T) {
	m := NewNop()
	m.CartAdded(false)
	m.CartAdded(true)
	m.CartAdded(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartAdds.WithLabelValues("new")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartAdds.WithLabelValues("merged")))
}

func TestCacheResults(t *testing.T) {
	m := NewNop()
	m.CacheMiss()
	m.CacheHit()
	m.CacheHit()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogCacheResults.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogCacheResults.WithLabelValues("miss")))
}

func TestReceiptIssued(t *testing.T) {
	m := NewNop()
	m.ReceiptIssued(19.98)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReceiptsIssued))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReceiptTotal))
}
