package buffer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/ringbuffer/errors"
	"github.com/c360/ringbuffer/pkg/ring"
)

// circularBuffer guards a ring.DynamicBuffer with a mutex and applies the
// overflow policy on top of the ring's own eviction.
type circularBuffer[T any] struct {
	mu       sync.RWMutex
	items    *ring.DynamicBuffer[T]
	capacity int
	stats    *Statistics    // always initialized
	metrics  *bufferMetrics // optional
	opts     *bufferOptions[T]
	logger   *slog.Logger

	// signalled whenever space frees up; Block writers wait on it
	notFull *sync.Cond

	closed   bool
	released bool
}

func newCircularBuffer[T any](capacity int, opts *bufferOptions[T]) (*circularBuffer[T], error) {
	if capacity <= 0 {
		capacity = 1
	}

	items, err := ring.NewDynamic(capacity, opts.ringOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "Buffer", "NewCircularBuffer", "create storage")
	}

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			_ = items.Close()
			return nil, errors.WrapTransient(err, "Buffer", "NewCircularBuffer", "metrics registration")
		}
	}

	cb := &circularBuffer[T]{
		items:    items,
		capacity: capacity,
		stats:    newStatistics(items.Stats()),
		metrics:  metrics,
		opts:     opts,
		logger:   opts.logger.With("component", "buffer", "capacity", capacity, "policy", opts.overflowPolicy.String()),
	}
	cb.notFull = sync.NewCond(&cb.mu)

	return cb, nil
}

// Write adds an item to the buffer according to the overflow policy.
func (cb *circularBuffer[T]) Write(item T) error {
	if cb.opts.overflowPolicy == Block {
		if cb.opts.blockTimeout > 0 {
			return cb.WriteWithTimeout(item, cb.opts.blockTimeout)
		}
		return cb.WriteWithContext(context.Background(), item)
	}

	dropped, ok, err := cb.write(item)
	// The callback runs unlocked so it may use the buffer.
	if ok && cb.opts.dropCallback != nil {
		cb.opts.dropCallback(dropped)
	}
	return err
}

// write applies DropOldest or DropNewest under the lock and reports the
// dropped item, if any.
func (cb *circularBuffer[T]) write(item T) (dropped T, ok bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return dropped, false, errors.WrapInvalid(errors.ErrClosed, "Buffer", "Write", "buffer closed")
	}

	if cb.items.Full() {
		cb.stats.overflow()
		if cb.metrics != nil {
			cb.metrics.recordOverflow()
		}

		switch cb.opts.overflowPolicy {
		case DropOldest:
			// PushBack evicts the front element.
			dropped, _ = cb.items.Front()
			cb.items.PushBack(item)
			cb.recordDrop("oldest")
			cb.recordWrite()
			return dropped, true, nil
		default:
			cb.recordDrop("newest")
			return item, true, nil
		}
	}

	cb.items.PushBack(item)
	cb.recordWrite()
	return dropped, false, nil
}

// WriteWithTimeout attempts to write an item with a timeout when using Block policy.
func (cb *circularBuffer[T]) WriteWithTimeout(item T, timeout time.Duration) error {
	if cb.opts.overflowPolicy != Block {
		return cb.Write(item)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return cb.WriteWithContext(ctx, item)
}

// WriteWithContext attempts to write an item with context cancellation when
// using Block policy. The context error is returned unwrapped.
func (cb *circularBuffer[T]) WriteWithContext(ctx context.Context, item T) error {
	if cb.opts.overflowPolicy != Block {
		return cb.Write(item)
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Buffer", "WriteWithContext", "buffer closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Taking the lock before broadcasting means a cancellation cannot slip
	// in between the ctx check below and Wait.
	stop := context.AfterFunc(ctx, func() {
		cb.mu.Lock()
		cb.notFull.Broadcast()
		cb.mu.Unlock()
	})
	defer stop()

	waited := false
	for cb.items.Full() && !cb.closed {
		if !waited {
			cb.stats.overflow()
			if cb.metrics != nil {
				cb.metrics.recordOverflow()
			}
			waited = true
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cb.notFull.Wait()
	}

	if cb.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Buffer", "WriteWithContext", "buffer closed during wait")
	}

	cb.items.PushBack(item)
	cb.recordWrite()
	return nil
}

// Read retrieves and removes the oldest item.
func (cb *circularBuffer[T]) Read() (T, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	item, err := cb.items.PopFront()
	if err != nil {
		var zero T
		return zero, false
	}

	cb.recordRead(1)
	cb.notFull.Signal()
	cb.releaseIfDrained()
	return item, true
}

// ReadBatch retrieves and removes up to max items in FIFO order.
func (cb *circularBuffer[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	n := min(max, cb.items.Len())
	if n == 0 {
		return nil
	}

	batch := make([]T, 0, n)
	for range n {
		item, _ := cb.items.PopFront()
		batch = append(batch, item)
	}

	cb.recordRead(n)
	cb.notFull.Broadcast()
	cb.releaseIfDrained()
	return batch
}

// Peek returns the oldest item without removing it.
func (cb *circularBuffer[T]) Peek() (T, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	item, err := cb.items.Front()
	if err != nil {
		var zero T
		return zero, false
	}

	cb.stats.peek()
	if cb.metrics != nil {
		cb.metrics.recordPeek()
	}
	return item, true
}

func (cb *circularBuffer[T]) Size() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.items.Len()
}

func (cb *circularBuffer[T]) Capacity() int {
	return cb.capacity
}

func (cb *circularBuffer[T]) IsFull() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.items.Len() == cb.capacity
}

func (cb *circularBuffer[T]) IsEmpty() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.items.Empty()
}

// Clear removes all items. They are reported to the drop callback, after the
// lock is released, in FIFO order.
func (cb *circularBuffer[T]) Clear() {
	cb.mu.Lock()
	var cleared []T
	if cb.opts.dropCallback != nil {
		cleared = cb.items.Slice()
	}
	cb.items.Clear()
	cb.stats.updateSize(0)
	if cb.metrics != nil {
		cb.metrics.updateSize(0, cb.capacity)
	}
	cb.notFull.Broadcast()
	cb.releaseIfDrained()
	cb.mu.Unlock()

	for _, item := range cleared {
		cb.opts.dropCallback(item)
	}
}

// Snapshot returns a copy of the buffered items, oldest first.
func (cb *circularBuffer[T]) Snapshot() []T {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.items.Slice()
}

// MarshalJSON encodes the buffered items as a JSON array, oldest first.
func (cb *circularBuffer[T]) MarshalJSON() ([]byte, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.items.MarshalJSON()
}

func (cb *circularBuffer[T]) Stats() *Statistics {
	return cb.stats
}

// Close stops accepting writes and wakes blocked writers. Buffered items can
// still be read; the storage is released once the buffer is drained.
func (cb *circularBuffer[T]) Close() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return nil
	}

	cb.closed = true
	cb.notFull.Broadcast()

	if cb.metrics != nil {
		cb.metrics.unregister()
		cb.metrics = nil
	}

	cb.logger.Info("buffer closed", "pending", cb.items.Len(), "drops", cb.stats.Drops())
	cb.releaseIfDrained()
	return nil
}

// releaseIfDrained closes the ring once a closed buffer holds no items.
// Callers hold the write lock.
func (cb *circularBuffer[T]) releaseIfDrained() {
	if !cb.closed || cb.released || !cb.items.Empty() {
		return
	}
	if err := cb.items.Close(); err != nil {
		cb.logger.Warn("release buffer storage", "error", err)
	}
	cb.released = true
}

func (cb *circularBuffer[T]) recordWrite() {
	size := cb.items.Len()
	cb.stats.write()
	cb.stats.updateSize(size)
	if cb.metrics != nil {
		cb.metrics.recordWrite(size, cb.capacity)
	}
}

func (cb *circularBuffer[T]) recordRead(n int) {
	size := cb.items.Len()
	cb.stats.read(n)
	cb.stats.updateSize(size)
	if cb.metrics != nil {
		cb.metrics.recordRead(n, size, cb.capacity)
	}
}

func (cb *circularBuffer[T]) recordDrop(which string) {
	cb.stats.drop()
	if cb.metrics != nil {
		cb.metrics.recordDrop()
	}
	cb.logger.Debug("buffer item dropped", "dropped", which, "drops", cb.stats.Drops())
}
