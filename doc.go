// Package ringbuffer is the root of a bounded ring buffer library and the
// tooling around it.
//
// # Layout
//
//	pkg/ring     single-threaded ring buffer: Fixed (inline array) and
//	             Dynamic (allocator-backed) variants, random-access iterators,
//	             element lifecycle accounting
//	pkg/buffer   thread-safe buffer on top of ring.Dynamic with overflow
//	             policies, blocking writers and YAML/JSON configuration
//	errors       classified errors and the container sentinels
//	metric       Prometheus registry and metrics HTTP server
//	cmd/ringload load generator for pkg/buffer
//
// # Choosing a Layer
//
// Use pkg/ring directly when one goroutine owns the buffer, for example a
// sliding window inside a request handler or a fixed history kept by a
// worker. Fixed buffers never touch the heap:
//
//	window, _ := ring.NewFixed[float64, [64]float64]()
//	window.PushBack(sample) // evicts the oldest sample once full
//
// Use pkg/buffer when producers and consumers run concurrently:
//
//	buf, _ := buffer.NewCircularBuffer[Event](4096,
//		buffer.WithOverflowPolicy[Event](buffer.Block),
//	)
//
// # Observability
//
// Both layers always keep statistics and can export Prometheus metrics
// through a metric.MetricsRegistry:
//
//	registry := metric.NewMetricsRegistry()
//	window, _ := ring.NewDynamic[int](128, ring.WithMetrics[int](registry, "window"))
//	go metric.NewServer(9090, "/metrics", registry).Start()
//
// # Errors
//
// Operations with preconditions return errors from package errors, classified
// as invalid (ErrEmpty, ErrOverflow, ErrOutOfRange) or transient
// (ErrAllocationFailed). Iterator misuse panics with a classified error value.
package ringbuffer
