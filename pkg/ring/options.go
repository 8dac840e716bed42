package ring

import (
	"github.com/c360/ringbuffer/metric"
)

// Option configures a buffer using the functional options pattern.
type Option[T any] func(*ringOptions[T])

// ringOptions holds the per-buffer configuration. Statistics are always
// collected; metrics, hooks and the copier are optional.
type ringOptions[T any] struct {
	// capacity overrides the source length in NewDynamicFrom. Negative means unset.
	capacity int

	// copier duplicates an element for Clone and CopyFrom. nil copies by assignment.
	copier func(T) (T, error)

	onConstruct func(T)
	onDestroy   func(T)

	metricsReg    metric.MetricsRegistrar
	metricsPrefix string
}

// WithCapacity sets the capacity of a dynamic buffer built from a sequence.
// Without it NewDynamicFrom sizes the buffer to the sequence length. Fixed
// buffers ignore it.
func WithCapacity[T any](capacity int) Option[T] {
	return func(opts *ringOptions[T]) {
		if capacity >= 0 {
			opts.capacity = capacity
		}
	}
}

// WithCopier sets the function used to duplicate elements when a buffer is
// cloned or copied into. An error aborts the copy and leaves the destination
// unchanged.
func WithCopier[T any](copier func(T) (T, error)) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.copier = copier
	}
}

// WithConstructHook registers fn to observe every element that becomes live
// in the buffer.
func WithConstructHook[T any](fn func(T)) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.onConstruct = fn
	}
}

// WithDestroyHook registers fn to observe every element that leaves the
// buffer through pop, eviction, truncation, Clear or Close.
func WithDestroyHook[T any](fn func(T)) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.onDestroy = fn
	}
}

// WithMetrics enables Prometheus metrics export for the buffer statistics.
// The option is ignored when registry is nil or prefix is empty.
func WithMetrics[T any](registry metric.MetricsRegistrar, prefix string) Option[T] {
	return func(opts *ringOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options over the defaults.
func applyOptions[T any](options ...Option[T]) *ringOptions[T] {
	opts := &ringOptions[T]{
		capacity: -1,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
