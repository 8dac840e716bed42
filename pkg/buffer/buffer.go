package buffer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/c360/ringbuffer/errors"
)

// Buffer is a bounded FIFO safe for concurrent use.
type Buffer[T any] interface {
	// Write adds an item to the buffer. Behavior depends on the overflow
	// policy when the buffer is full.
	Write(item T) error

	// WriteWithContext is Write that gives up when ctx is done. Only the Block
	// policy ever waits.
	WriteWithContext(ctx context.Context, item T) error

	// WriteWithTimeout is Write that waits at most timeout under the Block policy.
	WriteWithTimeout(item T, timeout time.Duration) error

	// Read retrieves and removes the oldest item.
	// Returns the zero value and false if the buffer is empty.
	Read() (T, bool)

	// ReadBatch retrieves and removes up to max items, oldest first.
	ReadBatch(max int) []T

	// Peek returns the oldest item without removing it.
	Peek() (T, bool)

	Size() int
	Capacity() int
	IsFull() bool
	IsEmpty() bool

	// Clear removes all items, passing each to the drop callback.
	Clear()

	// Snapshot copies the buffered items, oldest first.
	Snapshot() []T

	// Stats returns buffer statistics (always available).
	Stats() *Statistics

	// Close stops accepting writes and wakes blocked writers.
	Close() error
}

// OverflowPolicy defines how the buffer behaves when it reaches capacity.
type OverflowPolicy int

const (
	// DropOldest evicts the oldest item to make room for the new one.
	DropOldest OverflowPolicy = iota

	// DropNewest rejects the new item when the buffer is full.
	DropNewest

	// Block makes writers wait until space is available.
	Block
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the policy as drop_oldest, drop_newest or block.
func (p OverflowPolicy) MarshalText() ([]byte, error) {
	switch p {
	case DropOldest:
		return []byte("drop_oldest"), nil
	case DropNewest:
		return []byte("drop_newest"), nil
	case Block:
		return []byte("block"), nil
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "OverflowPolicy", "MarshalText",
			fmt.Sprintf("encode policy %d", int(p)))
	}
}

// UnmarshalText accepts the MarshalText names and the String names, ignoring case.
func (p *OverflowPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "drop_oldest", "dropoldest":
		*p = DropOldest
	case "drop_newest", "dropnewest":
		*p = DropNewest
	case "block":
		*p = Block
	default:
		return errors.WrapInvalid(errors.ErrParsingFailed, "OverflowPolicy", "UnmarshalText",
			fmt.Sprintf("parse policy %q", text))
	}
	return nil
}

// DropCallback is called with each item dropped by the overflow policy or Clear.
type DropCallback[T any] func(item T)

// NewCircularBuffer creates a buffer holding at most capacity items. A
// capacity below one is raised to one. Stats are always collected; metrics are
// optional via WithMetrics, and a failed metrics registration is returned as a
// transient error.
func NewCircularBuffer[T any](capacity int, options ...Option[T]) (Buffer[T], error) {
	cb, err := newCircularBuffer(capacity, applyOptions(options...))
	if err != nil {
		return nil, err
	}
	return cb, nil
}
