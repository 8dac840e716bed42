package ring

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/c360/ringbuffer/errors"
)

// ring holds the state and operations shared by Fixed and Dynamic. The live
// elements occupy the wrapping span [head, head+size) of the storage slots.
type ring[T any, S any, P slotter[T, S]] struct {
	store S
	head  int
	size  int
	life  lifecycle[T]

	// epoch changes with capacity; iterators taken before a change are stale.
	epoch uint64
}

func (r *ring[T, S, P]) slots() []T {
	return P(&r.store).slots()
}

// setup applies options and registers metrics. component names the public
// type for error context.
func (r *ring[T, S, P]) setup(opts *ringOptions[T], component, method string) error {
	r.life.opts = opts
	if opts != nil && opts.metricsReg != nil {
		m, err := newRingMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return errors.WrapTransient(err, component, method, "metrics registration")
		}
		r.life.metrics = m
	}
	r.observe()
	return nil
}

func (r *ring[T, S, P]) observe() {
	r.life.stats.observeSize(r.size)
	if r.life.metrics != nil {
		r.life.metrics.observe(r.size, len(r.slots()))
	}
}

func (r *ring[T, S, P]) recordPush() {
	r.life.stats.push()
	if r.life.metrics != nil {
		r.life.metrics.pushes.Inc()
	}
}

func (r *ring[T, S, P]) recordPop() {
	r.life.stats.pop()
	if r.life.metrics != nil {
		r.life.metrics.pops.Inc()
	}
}

func (r *ring[T, S, P]) recordEviction() {
	r.life.stats.evict()
	if r.life.metrics != nil {
		r.life.metrics.evictions.Inc()
	}
}

// Len returns the number of live elements.
func (r *ring[T, S, P]) Len() int { return r.size }

// Cap returns the number of slots, which is also the maximum size.
func (r *ring[T, S, P]) Cap() int { return len(r.slots()) }

// Empty reports whether Len() == 0.
func (r *ring[T, S, P]) Empty() bool { return r.size == 0 }

// Full reports whether Len() == Cap(). A zero-capacity buffer is always full.
func (r *ring[T, S, P]) Full() bool { return r.size == len(r.slots()) }

// Stats returns the buffer statistics.
func (r *ring[T, S, P]) Stats() *Statistics { return &r.life.stats }

// Front returns the first element.
func (r *ring[T, S, P]) Front() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrEmpty, "Ring", "Front", "read front")
	}
	return r.slots()[r.head], nil
}

// Back returns the last element.
func (r *ring[T, S, P]) Back() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrEmpty, "Ring", "Back", "read back")
	}
	s := r.slots()
	return s[physical(r.head, r.size-1, len(s))], nil
}

// FrontRef returns a pointer to the first element, or nil when empty.
func (r *ring[T, S, P]) FrontRef() *T {
	if r.size == 0 {
		return nil
	}
	return &r.slots()[r.head]
}

// BackRef returns a pointer to the last element, or nil when empty.
func (r *ring[T, S, P]) BackRef() *T {
	if r.size == 0 {
		return nil
	}
	s := r.slots()
	return &s[physical(r.head, r.size-1, len(s))]
}

// At returns the element at logical position i.
func (r *ring[T, S, P]) At(i int) (T, error) {
	if i < 0 || i >= r.size {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrOutOfRange, "Ring", "At", fmt.Sprintf("read index %d of %d", i, r.size))
	}
	return *r.ref(i), nil
}

// Ref returns a pointer to the element at logical position i, or nil when i
// is out of range. The pointer is valid until the next mutation.
func (r *ring[T, S, P]) Ref(i int) *T {
	if i < 0 || i >= r.size {
		return nil
	}
	return r.ref(i)
}

// Swap exchanges the elements at logical positions i and j. It panics if
// either is out of range.
func (r *ring[T, S, P]) Swap(i, j int) {
	if i < 0 || i >= r.size || j < 0 || j >= r.size {
		panic(errors.WrapInvalid(errors.ErrOutOfRange, "Ring", "Swap", fmt.Sprintf("swap %d and %d of %d", i, j, r.size)))
	}
	a, b := r.ref(i), r.ref(j)
	*a, *b = *b, *a
}

func (r *ring[T, S, P]) ref(offset int) *T {
	s := r.slots()
	return &s[physical(r.head, offset, len(s))]
}

func (r *ring[T, S, P]) generation() uint64 { return r.epoch }

// PushBack appends v. When the buffer is full the front element is evicted
// first. Pushing into a zero-capacity buffer is discarded.
func (r *ring[T, S, P]) PushBack(v T) {
	s := r.slots()
	c := len(s)
	if c == 0 {
		r.life.stats.discard()
		return
	}

	if r.size == c {
		// The evicted front slot becomes the new back slot.
		r.life.destroy(s, r.head)
		r.recordEviction()
		r.life.construct(s, r.head, v)
		r.head = advance(r.head, c)
	} else {
		r.life.construct(s, physical(r.head, r.size, c), v)
		r.size++
	}

	r.recordPush()
	r.observe()
}

// PushFront prepends v. When the buffer is full the back element is evicted
// first. Pushing into a zero-capacity buffer is discarded.
func (r *ring[T, S, P]) PushFront(v T) {
	s := r.slots()
	c := len(s)
	if c == 0 {
		r.life.stats.discard()
		return
	}

	if r.size == c {
		// The evicted back slot sits right before head.
		r.head = retreat(r.head, c)
		r.life.destroy(s, r.head)
		r.recordEviction()
		r.life.construct(s, r.head, v)
	} else {
		r.head = retreat(r.head, c)
		r.life.construct(s, r.head, v)
		r.size++
	}

	r.recordPush()
	r.observe()
}

// EmplaceBack builds a new back element with fn. In a buffer with room fn
// writes straight into the free slot; in a full buffer the element is built
// first and the front is evicted only if fn succeeds. An error from fn leaves
// the buffer unchanged.
func (r *ring[T, S, P]) EmplaceBack(fn func(*T) error) error {
	s := r.slots()
	c := len(s)
	if c == 0 {
		r.life.stats.discard()
		return nil
	}

	if r.size == c {
		var v T
		if err := fn(&v); err != nil {
			return errors.Wrap(err, "Ring", "EmplaceBack", "construct element")
		}
		r.PushBack(v)
		return nil
	}

	if err := r.life.emplace(s, physical(r.head, r.size, c), fn); err != nil {
		return errors.Wrap(err, "Ring", "EmplaceBack", "construct element")
	}
	r.size++
	r.recordPush()
	r.observe()
	return nil
}

// EmplaceFront is the front counterpart of EmplaceBack.
func (r *ring[T, S, P]) EmplaceFront(fn func(*T) error) error {
	s := r.slots()
	c := len(s)
	if c == 0 {
		r.life.stats.discard()
		return nil
	}

	if r.size == c {
		var v T
		if err := fn(&v); err != nil {
			return errors.Wrap(err, "Ring", "EmplaceFront", "construct element")
		}
		r.PushFront(v)
		return nil
	}

	slot := retreat(r.head, c)
	if err := r.life.emplace(s, slot, fn); err != nil {
		return errors.Wrap(err, "Ring", "EmplaceFront", "construct element")
	}
	r.head = slot
	r.size++
	r.recordPush()
	r.observe()
	return nil
}

// PopFront removes and returns the first element.
func (r *ring[T, S, P]) PopFront() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrEmpty, "Ring", "PopFront", "pop")
	}

	s := r.slots()
	v := r.life.destroy(s, r.head)
	r.head = advance(r.head, len(s))
	r.size--
	if r.size == 0 {
		r.head = 0
	}

	r.recordPop()
	r.observe()
	return v, nil
}

// PopBack removes and returns the last element.
func (r *ring[T, S, P]) PopBack() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrEmpty, "Ring", "PopBack", "pop")
	}

	s := r.slots()
	v := r.life.destroy(s, physical(r.head, r.size-1, len(s)))
	r.size--
	if r.size == 0 {
		r.head = 0
	}

	r.recordPop()
	r.observe()
	return v, nil
}

// Clear destroys every element. Capacity is unchanged.
func (r *ring[T, S, P]) Clear() {
	r.life.destroySpan(r.slots(), r.head, r.size)
	r.head = 0
	r.size = 0
	r.observe()
}

// relocate moves the live elements of src, in logical order, to dst[0:] and
// empties their slots in src. No construction or destruction is recorded.
func relocate[T any](dst, src []T, head, n int) {
	c := len(src)
	var zero T
	for i := 0; i < n; i++ {
		j := physical(head, i, c)
		dst[i] = src[j]
		src[j] = zero
	}
}

// Begin returns an iterator at the first element.
func (r *ring[T, S, P]) Begin() Iterator[T] {
	return Iterator[T]{buf: r, off: 0, gen: r.epoch}
}

// End returns an iterator one past the last element.
func (r *ring[T, S, P]) End() Iterator[T] {
	return Iterator[T]{buf: r, off: r.size, gen: r.epoch}
}

// CBegin returns a read-only iterator at the first element.
func (r *ring[T, S, P]) CBegin() ConstIterator[T] {
	return r.Begin().Const()
}

// CEnd returns a read-only iterator one past the last element.
func (r *ring[T, S, P]) CEnd() ConstIterator[T] {
	return r.End().Const()
}

// All yields the logical positions and elements from front to back.
func (r *ring[T, S, P]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < r.size; i++ {
			if !yield(i, *r.ref(i)) {
				return
			}
		}
	}
}

// Values yields the elements from front to back.
func (r *ring[T, S, P]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < r.size; i++ {
			if !yield(*r.ref(i)) {
				return
			}
		}
	}
}

// Backward yields the logical positions and elements from back to front.
func (r *ring[T, S, P]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := r.size - 1; i >= 0; i-- {
			if !yield(i, *r.ref(i)) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements in logical order.
func (r *ring[T, S, P]) Slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = *r.ref(i)
	}
	return out
}

// MarshalJSON encodes the elements as a JSON array in logical order.
func (r *ring[T, S, P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Slice())
}

// closeMetrics removes the buffer metrics from their registry.
func (r *ring[T, S, P]) closeMetrics() {
	if r.life.metrics != nil {
		r.life.metrics.unregister()
		r.life.metrics = nil
	}
}
