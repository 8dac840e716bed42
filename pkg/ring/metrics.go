package ring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ringbuffer/metric"
)

// ringMetrics holds Prometheus metrics for a single buffer.
type ringMetrics struct {
	registry metric.MetricsRegistrar
	prefix   string
	names    []string

	pushes        prometheus.Counter
	pops          prometheus.Counter
	evictions     prometheus.Counter
	constructions prometheus.Counter
	destructions  prometheus.Counter

	size        prometheus.Gauge
	capacity    prometheus.Gauge
	utilization prometheus.Gauge
}

func newCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "ringbuffer",
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

func newGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "ringbuffer",
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newRingMetrics creates and registers buffer metrics with registry. On a
// registration failure every metric registered so far is removed again.
func newRingMetrics(registry metric.MetricsRegistrar, prefix string) (*ringMetrics, error) {
	m := &ringMetrics{
		registry:      registry,
		prefix:        prefix,
		pushes:        newCounter(prefix, "pushes_total", "Total number of elements pushed"),
		pops:          newCounter(prefix, "pops_total", "Total number of elements popped"),
		evictions:     newCounter(prefix, "evictions_total", "Total number of elements evicted by pushes into a full buffer"),
		constructions: newCounter(prefix, "constructions_total", "Total number of elements constructed"),
		destructions:  newCounter(prefix, "destructions_total", "Total number of elements destroyed"),
		size:          newGauge(prefix, "size", "Current number of elements"),
		capacity:      newGauge(prefix, "capacity", "Current capacity"),
		utilization:   newGauge(prefix, "utilization", "Size as a fraction of capacity (0.0 to 1.0)"),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"ring_pushes", m.pushes},
		{"ring_pops", m.pops},
		{"ring_evictions", m.evictions},
		{"ring_constructions", m.constructions},
		{"ring_destructions", m.destructions},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			m.unregister()
			return nil, err
		}
		m.names = append(m.names, c.name)
	}

	gauges := []struct {
		name string
		g    prometheus.Gauge
	}{
		{"ring_size", m.size},
		{"ring_capacity", m.capacity},
		{"ring_utilization", m.utilization},
	}
	for _, g := range gauges {
		if err := registry.RegisterGauge(prefix, g.name, g.g); err != nil {
			m.unregister()
			return nil, err
		}
		m.names = append(m.names, g.name)
	}

	return m, nil
}

// observe sets the size gauges.
func (m *ringMetrics) observe(size, capacity int) {
	m.size.Set(float64(size))
	m.capacity.Set(float64(capacity))
	if capacity == 0 {
		m.utilization.Set(0)
		return
	}
	m.utilization.Set(float64(size) / float64(capacity))
}

// unregister removes every registered metric from the registry.
func (m *ringMetrics) unregister() {
	for _, name := range m.names {
		m.registry.Unregister(m.prefix, name)
	}
	m.names = nil
}
