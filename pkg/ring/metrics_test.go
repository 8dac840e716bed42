package ring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/ringbuffer/errors"
	"github.com/c360/ringbuffer/metric"
)

func TestRingMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	b, err := NewDynamic[int](4, WithMetrics[int](registry, "window"))
	require.NoError(t, err)
	require.NotNil(t, b.life.metrics)
	assert.Equal(t, 8, registry.Registered())

	fill(b, 6)
	_, err = b.PopFront()
	require.NoError(t, err)

	m := b.life.metrics
	assert.Equal(t, 6.0, testutil.ToFloat64(m.pushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pops))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evictions))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.constructions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.destructions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.size))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.capacity))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.utilization))

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "ringbuffer_ring_pushes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, b.Close())
	assert.Equal(t, 0, registry.Registered())
	assert.Nil(t, b.life.metrics)
}

func TestRingMetricsDuplicatePrefix(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	first, err := NewFixed[int, [4]int](WithMetrics[int](registry, "dup"))
	require.NoError(t, err)
	defer first.Close()

	_, err = NewFixed[int, [4]int](WithMetrics[int](registry, "dup"))
	require.Error(t, err)
	assert.True(t, cerrors.IsTransient(err))
	assert.Equal(t, 8, registry.Registered(), "the first buffer keeps its metrics")

	clone, err := first.Clone()
	require.NoError(t, err)
	assert.Nil(t, clone.life.metrics, "clones do not register metrics")
}

func TestWithMetricsIgnoresIncompleteArguments(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	b, err := NewDynamic[int](2, WithMetrics[int](registry, ""), WithMetrics[int](nil, "x"))
	require.NoError(t, err)
	assert.Nil(t, b.life.metrics)
	assert.Equal(t, 0, registry.Registered())
}
