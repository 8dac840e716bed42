package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ringbuffer/metric"
)

// bufferMetrics holds Prometheus metrics for buffer operations.
type bufferMetrics struct {
	registry metric.MetricsRegistrar
	prefix   string
	names    []string

	writes    prometheus.Counter
	reads     prometheus.Counter
	peeks     prometheus.Counter
	overflows prometheus.Counter
	drops     prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

// newBufferMetrics creates and registers buffer metrics with the provided registry.
// A failed registration removes the metrics registered before it.
func newBufferMetrics(registry metric.MetricsRegistrar, prefix string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		registry: registry,
		prefix:   prefix,
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "writes_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of accepted buffer writes",
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "reads_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of items read from the buffer",
		}),
		peeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "peeks_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of buffer peek operations",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "overflows_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of writes into a full buffer",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "drops_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of items dropped due to overflow",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of items in buffer",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "buffer",
			Name:        "utilization",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Buffer utilization as a percentage (0.0 to 1.0)",
		}),
	}

	for name, c := range map[string]prometheus.Counter{
		"buffer_writes":    m.writes,
		"buffer_reads":     m.reads,
		"buffer_peeks":     m.peeks,
		"buffer_overflows": m.overflows,
		"buffer_drops":     m.drops,
	} {
		if err := registry.RegisterCounter(prefix, name, c); err != nil {
			m.unregister()
			return nil, err
		}
		m.names = append(m.names, name)
	}
	for name, g := range map[string]prometheus.Gauge{
		"buffer_size":        m.size,
		"buffer_utilization": m.utilization,
	} {
		if err := registry.RegisterGauge(prefix, name, g); err != nil {
			m.unregister()
			return nil, err
		}
		m.names = append(m.names, name)
	}

	return m, nil
}

// recordWrite increments the write counter and updates size/utilization.
func (m *bufferMetrics) recordWrite(size, capacity int) {
	m.writes.Inc()
	m.updateSize(size, capacity)
}

// recordRead adds n reads and updates size/utilization.
func (m *bufferMetrics) recordRead(n, size, capacity int) {
	m.reads.Add(float64(n))
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordPeek()     { m.peeks.Inc() }
func (m *bufferMetrics) recordOverflow() { m.overflows.Inc() }
func (m *bufferMetrics) recordDrop()     { m.drops.Inc() }

// updateSize sets the current buffer size and utilization.
func (m *bufferMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}

func (m *bufferMetrics) unregister() {
	for _, name := range m.names {
		m.registry.Unregister(m.prefix, name)
	}
	m.names = nil
}
