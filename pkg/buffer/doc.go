// Package buffer provides a thread-safe bounded buffer with configurable overflow
// policies, always-on statistics and optional Prometheus metrics.
//
// # Overview
//
// A Buffer hands items from producers to consumers in FIFO order. Items live in a
// ring.DynamicBuffer; this package adds the locking, the overflow policy and the
// accounting that the single-threaded ring leaves to its callers.
//
// # Quick Start
//
//	buf, err := buffer.NewCircularBuffer[int](1000)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = buf.Write(42)
//	value, ok := buf.Read()
//
// With overflow policy, metrics and a logger:
//
//	buf, err := buffer.NewCircularBuffer[[]byte](5000,
//		buffer.WithOverflowPolicy[[]byte](buffer.DropNewest),
//		buffer.WithMetrics[[]byte](registry, "network_input"),
//		buffer.WithLogger[[]byte](logger),
//	)
//
// # Overflow Policies
//
//   - DropOldest: the ring evicts the oldest item (default)
//   - DropNewest: the new item is rejected
//   - Block: writers wait for space, bounded by a context or WithBlockTimeout
//
// Both drop policies report the dropped item to the DropCallback. Write never
// returns an error for a drop; it fails only once the buffer is closed
// (errors.ErrClosed).
//
//	buf, _ := buffer.NewCircularBuffer[*Event](100,
//		buffer.WithOverflowPolicy[*Event](buffer.Block),
//	)
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	err := buf.WriteWithContext(ctx, event) // ctx.Err() on timeout
//
// # Configuration
//
// Config carries the same settings in a form that can be loaded from YAML or JSON:
//
//	capacity: 4096
//	overflow_policy: block
//	block_timeout: 250ms
//	metrics_prefix: ingest
//
//	cfg, err := buffer.ParseConfig(data)
//	buf, err := buffer.NewFromConfig[Event](cfg, registry)
//
// # Observability
//
// Statistics are always collected and available through Stats(). They include
// writes, reads, peeks, overflows and drops plus the element counters of the
// underlying ring (Stats().Ring()). WithMetrics exports the buffer counters as
// ringbuffer_buffer_* Prometheus metrics labelled with the prefix; they are
// unregistered on Close.
//
// Drops are logged at debug level and Close at info level through log/slog.
//
// # Element Options
//
// WithRingOptions forwards ring options such as ring.WithDestroyHook to the
// storage, so element lifetimes can be observed across writes, evictions,
// reads and Clear.
//
// # Closing
//
// Close rejects further writes and wakes blocked writers with ErrClosed.
// Buffered items stay readable. The ring storage is released once a closed
// buffer has been drained by Read, ReadBatch or Clear.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Drop callbacks run without the
// buffer lock held.
package buffer
