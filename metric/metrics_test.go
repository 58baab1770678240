package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	registry, metrics, err := NewRegistry("fluxmesh")
	require.NoError(t, err)

	metrics.ItemDispatched("p1")
	metrics.ItemDispatched("p1")
	metrics.ItemCompleted("p1")
	metrics.ItemFailed("p1")
	metrics.Capacity("p1", 7, 0)
	metrics.Collected(3)
	metrics.Delivered(2)
	metrics.Discarded(1)

	assert.EqualValues(t, 2, testutil.ToFloat64(metrics.Dispatched.WithLabelValues("p1")))
	assert.EqualValues(t, 1, testutil.ToFloat64(metrics.Completed.WithLabelValues("p1")))
	assert.EqualValues(t, 1, testutil.ToFloat64(metrics.Failed.WithLabelValues("p1")))
	assert.EqualValues(t, 7, testutil.ToFloat64(metrics.QueueDepth.WithLabelValues("p1")))
	assert.EqualValues(t, 3, testutil.ToFloat64(metrics.MailCollected))
	assert.EqualValues(t, 2, testutil.ToFloat64(metrics.MailDelivered))
	assert.EqualValues(t, 1, testutil.ToFloat64(metrics.MailDiscarded))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)

	assert.Error(t, metrics.Register(registry))
}

func TestMetrics_Nil(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.ItemDispatched("p")
		metrics.ItemCompleted("p")
		metrics.ItemFailed("p")
		metrics.Capacity("p", 1, 1)
		metrics.Collected(1)
		metrics.Delivered(1)
		metrics.Discarded(1)
	})
}
