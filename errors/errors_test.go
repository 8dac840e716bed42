package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassify covers the errors the ring and buffer packages actually
// return, wrapped the way they wrap them.
func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		class    ErrorClass
	}{
		{"pop empty", WrapInvalid(ErrEmpty, "Ring", "PopFront", "pop front"), ErrEmpty, ErrorInvalid},
		{"index", WrapInvalid(ErrOutOfRange, "Ring", "At", "index 9"), ErrOutOfRange, ErrorInvalid},
		{"source too long", WrapInvalid(ErrOverflow, "Fixed", "Assign", "populate"), ErrOverflow, ErrorInvalid},
		{"foreign iterator", WrapInvalid(ErrForeignIterator, "Iterator", "Distance", "compare"), ErrForeignIterator, ErrorInvalid},
		{"stale iterator", WrapInvalid(ErrStaleIterator, "Iterator", "Get", "dereference"), ErrStaleIterator, ErrorInvalid},
		{"closed", WrapInvalid(ErrClosed, "Buffer", "Write", "buffer closed"), ErrClosed, ErrorInvalid},
		{"bad config", WrapInvalid(ErrInvalidConfig, "buffer", "Validate", "capacity"), ErrInvalidConfig, ErrorInvalid},
		{"allocation", WrapTransient(ErrAllocationFailed, "Dynamic", "Reserve", "allocate"), ErrAllocationFailed, ErrorTransient},
		{"missing config", WrapFatal(ErrMissingConfig, "ringload", "validateFlags", "stat config"), ErrMissingConfig, ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.class, Classify(tt.err))
			assert.Equal(t, tt.class == ErrorTransient, IsTransient(tt.err))
			assert.Equal(t, tt.class == ErrorInvalid, IsInvalid(tt.err))
			assert.Equal(t, tt.class == ErrorFatal, IsFatal(tt.err))
		})
	}
}

func TestClassifyUnwrapped(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class ErrorClass
	}{
		{"allocation", fmt.Errorf("grow: %w", ErrAllocationFailed), ErrorTransient},
		{"empty", ErrEmpty, ErrorInvalid},
		{"parse", fmt.Errorf("%w: yaml", ErrParsingFailed), ErrorInvalid},
		{"config", ErrInvalidConfig, ErrorFatal},
		{"write timed out", context.DeadlineExceeded, ErrorTransient},
		{"write cancelled", context.Canceled, ErrorTransient},
		{"unknown", errors.New("something else"), ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, Classify(tt.err))
		})
	}

	assert.False(t, IsTransient(nil))
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsFatal(nil))
}

func TestWrapFormat(t *testing.T) {
	err := WrapInvalid(ErrOverflow, "Fixed", "NewFixedFrom", "populate")
	assert.EqualError(t, err, "Fixed.NewFixedFrom: populate failed: source exceeds buffer capacity")

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Fixed", ce.Component)
	assert.Equal(t, "NewFixedFrom", ce.Operation)
	assert.Equal(t, "invalid", ce.Class.String())

	// Wrap keeps the class of what it wraps.
	outer := Wrap(err, "buffer", "NewFromConfig", "build")
	assert.Equal(t, ErrorInvalid, Classify(outer))
	assert.ErrorIs(t, outer, ErrOverflow)

	for _, wrap := range []func(error, string, string, string) error{Wrap, WrapTransient, WrapInvalid, WrapFatal} {
		assert.NoError(t, wrap(nil, "c", "m", "a"))
	}
}

func BenchmarkClassify(b *testing.B) {
	err := WrapInvalid(ErrOverflow, "Fixed", "NewFixedFrom", "populate")
	for b.Loop() {
		Classify(err)
	}
}
