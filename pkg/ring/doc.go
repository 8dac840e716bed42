// Package ring provides bounded ring buffers with two storage strategies.
//
// # Overview
//
// A ring buffer holds at most Cap() elements. Pushing into a full buffer
// evicts the element at the opposite end instead of growing, which makes the
// package a fit for sliding windows, bounded histories and streaming queues.
//
//   - Fixed[T, A]: the slots are an array A = [N]T embedded in the buffer
//     value. No storage is allocated and the zero value is ready to use.
//   - Dynamic[T, M]: the slots come from an Allocator M. The capacity only
//     changes on explicit request (Reserve, Resize). DynamicBuffer[T] is the
//     heap-backed default.
//
// Both variants share the same operations: PushBack, PushFront, EmplaceBack,
// EmplaceFront, PopBack, PopFront, Front, Back, At, Clear, Clone, CopyFrom,
// Take, MoveFrom, Assign and random-access iterators.
//
// # Quick Start
//
//	var window ring.Fixed[float64, [64]float64]
//	for sample := range samples {
//		window.PushBack(sample) // keeps the latest 64
//	}
//
//	history, err := ring.NewDynamic[Event](1024,
//		ring.WithMetrics[Event](registry, "history"),
//	)
//	if err != nil {
//		return err
//	}
//	defer history.Close()
//
// # Eviction
//
// PushBack on a full buffer destroys the front element and stores the new one
// in its slot; PushFront destroys the back element. A zero-capacity buffer
// discards every push. Eviction is not an error.
//
// Populating a buffer from a sequence is different: NewFixedFrom,
// NewDynamicFrom with WithCapacity, and Assign fail with errors.ErrOverflow
// when the sequence does not fit, and nothing is created or changed.
//
// # Element Lifetime
//
// Every element that becomes live is counted as a construction and every
// element that leaves as a destruction (Stats().Constructions(),
// Stats().Destructions(), WithConstructHook, WithDestroyHook). Across all
// buffers the two totals are equal once every buffer is closed. Relocation
// inside a buffer and moves between buffers are not counted.
//
// Multi-element operations stage their result in fresh storage. If a copy or
// allocation fails the receiving buffer keeps its previous contents.
//
// # Iterators
//
// Iterator and ConstIterator address a logical offset, not a slot:
//
//	for it := buf.Begin(); !it.Equal(buf.End()); it = it.Next() {
//		it.Set(it.Value() * 2)
//	}
//
// After an eviction an iterator keeps its offset and may yield a different
// element. After a capacity change dereferencing panics with
// errors.ErrStaleIterator. All, Values and Backward return iter sequences for
// use with slices.Collect and range loops.
//
// # Thread Safety
//
// Buffers are not safe for concurrent use. Statistics may be read from other
// goroutines. Package buffer wraps a Dynamic with locking and overflow
// policies.
package ring
