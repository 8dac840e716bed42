package buffer

import (
	"log/slog"
	"time"

	"github.com/c360/ringbuffer/metric"
	"github.com/c360/ringbuffer/pkg/ring"
)

// Option configures buffer behavior using the functional options pattern.
type Option[T any] func(*bufferOptions[T])

// bufferOptions holds internal configuration for buffer instances.
// Stats are always collected. Metrics are optional and exposed via WithMetrics().
type bufferOptions[T any] struct {
	overflowPolicy OverflowPolicy
	blockTimeout   time.Duration
	dropCallback   DropCallback[T]
	logger         *slog.Logger

	// passed through to the underlying ring
	ringOptions []ring.Option[T]

	metricsReg    metric.MetricsRegistrar
	metricsPrefix string
}

// WithOverflowPolicy sets the overflow behavior for the buffer.
// Defaults to DropOldest if not specified.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithBlockTimeout bounds how long Write waits for space under the Block
// policy. Zero waits until space frees up or the buffer is closed.
func WithBlockTimeout[T any](timeout time.Duration) Option[T] {
	return func(opts *bufferOptions[T]) {
		if timeout > 0 {
			opts.blockTimeout = timeout
		}
	}
}

// WithMetrics enables Prometheus metrics export for buffer statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[T any](registry metric.MetricsRegistrar, prefix string) Option[T] {
	return func(opts *bufferOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithDropCallback sets a callback function that is called when items are dropped.
// It runs after the buffer lock is released, so it may call back into the buffer.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.dropCallback = callback
	}
}

// WithLogger sets the logger used for drop and lifecycle events.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(opts *bufferOptions[T]) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithRingOptions forwards element options (copier, hooks) to the ring that
// stores the items. Capacity and metrics options are overridden by the buffer.
func WithRingOptions[T any](options ...ring.Option[T]) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.ringOptions = append(opts.ringOptions, options...)
	}
}

func applyOptions[T any](options ...Option[T]) *bufferOptions[T] {
	opts := &bufferOptions[T]{
		overflowPolicy: DropOldest,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
