package metric

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/ringbuffer/errors"
)

// MetricsRegistrar is what rings and buffers register their collectors with.
// component is the metrics prefix the container was configured with.
type MetricsRegistrar interface {
	RegisterCounter(component, name string, counter prometheus.Counter) error
	RegisterGauge(component, name string, gauge prometheus.Gauge) error
	Unregister(component, name string) bool
}

type collectorKey struct {
	component string
	name      string
}

// MetricsRegistry wraps a Prometheus registry and remembers which component
// owns each collector, so a container can release exactly what it registered.
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry

	mu         sync.RWMutex
	collectors map[collectorKey]prometheus.Collector
}

// NewMetricsRegistry creates a registry that also exports the Go runtime and
// process collectors.
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		prometheusRegistry: prometheus.NewRegistry(),
		collectors:         make(map[collectorKey]prometheus.Collector),
	}

	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

func (r *MetricsRegistry) RegisterCounter(component, name string, counter prometheus.Counter) error {
	return r.register("RegisterCounter", collectorKey{component, name}, counter)
}

func (r *MetricsRegistry) RegisterGauge(component, name string, gauge prometheus.Gauge) error {
	return r.register("RegisterGauge", collectorKey{component, name}, gauge)
}

func (r *MetricsRegistry) register(method string, key collectorKey, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collectors[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for component %s", key.name, key.component),
			"MetricsRegistry", method, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return errors.WrapInvalid(err, "MetricsRegistry", method,
				fmt.Sprintf("prometheus conflict for metric %s", key.name))
		}
		return errors.WrapFatal(err, "MetricsRegistry", method, "register collector")
	}

	r.collectors[key] = c
	return nil
}

// Unregister removes the collector registered under component and name. It
// reports false when there was none.
func (r *MetricsRegistry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := collectorKey{component, name}
	c, exists := r.collectors[key]
	if !exists {
		return false
	}
	if !r.prometheusRegistry.Unregister(c) {
		return false
	}
	delete(r.collectors, key)
	return true
}

// Registered reports how many collectors are currently registered.
func (r *MetricsRegistry) Registered() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collectors)
}

// Components lists the components that currently own collectors, sorted.
func (r *MetricsRegistry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range r.collectors {
		seen[key.component] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}
