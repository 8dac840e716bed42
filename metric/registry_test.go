package metric_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringbuffer/errors"
	"github.com/c360/ringbuffer/metric"
	"github.com/c360/ringbuffer/pkg/buffer"
	"github.com/c360/ringbuffer/pkg/ring"
)

func TestRegistryTracksComponents(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	assert.Zero(t, registry.Registered())

	r, err := ring.NewDynamic[int](4, ring.WithMetrics[int](registry, "ingest"))
	require.NoError(t, err)
	b, err := buffer.NewCircularBuffer[int](4, buffer.WithMetrics[int](registry, "egress"))
	require.NoError(t, err)

	assert.Equal(t, []string{"egress", "ingest"}, registry.Components())
	assert.Equal(t, 8+7, registry.Registered())

	r.PushBack(1)
	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "ringbuffer_ring_pushes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, r.Close())
	assert.Equal(t, []string{"egress"}, registry.Components())

	require.NoError(t, b.Close())
	assert.Empty(t, registry.Components())
	assert.Zero(t, registry.Registered())
}

func TestDuplicateRegistration(t *testing.T) {
	newCounter := func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ringbuffer",
			Name:      "dup_total",
			Help:      "Counter registered twice",
		})
	}

	registry := metric.NewMetricsRegistry()
	require.NoError(t, registry.RegisterCounter("a", "dup", newCounter()))

	tests := []struct {
		name      string
		component string
		contains  string
	}{
		{"same component and name", "a", "duplicate metric registration"},
		{"same collector under another component", "b", "prometheus conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.RegisterCounter(tt.component, "dup", newCounter())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, errors.IsInvalid(err))
		})
	}
	assert.Equal(t, 1, registry.Registered())
}

func TestUnregisterReleasesName(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ringbuffer",
		Name:      "release_size",
		Help:      "Gauge released and registered again",
	})

	require.NoError(t, registry.RegisterGauge("cache", "size", gauge))
	assert.True(t, registry.Unregister("cache", "size"))
	assert.False(t, registry.Unregister("cache", "size"))
	assert.False(t, registry.Unregister("other", "size"))

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "ringbuffer_release_size")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, registry.RegisterGauge("cache", "size", gauge))
}

func TestConcurrentRingRegistration(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	const rings = 10
	var wg sync.WaitGroup
	for i := range rings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ring.NewDynamic[string](8, ring.WithMetrics[string](registry, fmt.Sprintf("shard-%d", i)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, registry.Components(), rings)
	assert.Equal(t, rings*8, registry.Registered())

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "ringbuffer_ring_capacity")
	require.NoError(t, err)
	assert.Equal(t, rings, count)
}
