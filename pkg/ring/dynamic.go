package ring

import (
	"fmt"
	"iter"
	"slices"

	"github.com/c360/ringbuffer/errors"
)

// Dynamic is a ring buffer whose slots come from an Allocator. Its capacity
// only changes on Reserve, Resize, CopyFrom, MoveFrom and Close.
//
// The zero value of a Dynamic with a value allocator such as HeapAllocator is
// an empty buffer of capacity zero. With a pointer allocator use
// NewDynamicWithAllocator.
type Dynamic[T any, M Allocator[T]] struct {
	ring[T, heap[T, M], *heap[T, M]]
}

// DynamicBuffer is a Dynamic backed by the garbage-collected heap.
type DynamicBuffer[T any] = Dynamic[T, HeapAllocator[T]]

// NewDynamic creates an empty buffer with the given capacity.
func NewDynamic[T any](capacity int, options ...Option[T]) (*DynamicBuffer[T], error) {
	return NewDynamicWithAllocator(HeapAllocator[T]{}, capacity, options...)
}

// NewDynamicWithAllocator creates an empty buffer whose storage comes from alloc.
func NewDynamicWithAllocator[T any, M Allocator[T]](alloc M, capacity int, options ...Option[T]) (*Dynamic[T, M], error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(errors.ErrOutOfRange, "Dynamic", "NewDynamic",
			fmt.Sprintf("validate capacity %d", capacity))
	}

	d := &Dynamic[T, M]{}
	d.store.alloc = alloc
	block, err := d.store.obtain(capacity)
	if err != nil {
		return nil, allocError(err, "NewDynamic")
	}
	d.store.block = block

	if err := d.setup(applyOptions(options...), "Dynamic", "NewDynamic"); err != nil {
		d.store.release(block)
		return nil, err
	}
	return d, nil
}

// NewDynamicFilled creates a buffer holding n copies of value. Its capacity
// is n unless WithCapacity sets a larger one.
func NewDynamicFilled[T any](n int, value T, options ...Option[T]) (*DynamicBuffer[T], error) {
	if n < 0 {
		return nil, errors.WrapInvalid(errors.ErrOutOfRange, "Dynamic", "NewDynamicFilled", "validate count")
	}
	options = append([]Option[T]{WithCapacity[T](n)}, options...)
	return newDynamicFrom(HeapAllocator[T]{}, repeat(n, value), "NewDynamicFilled", options...)
}

// NewDynamicFrom creates a buffer holding the elements of values in order.
// Without WithCapacity the capacity is exactly the number of elements; with it
// a longer sequence fails with ErrOverflow.
func NewDynamicFrom[T any](values iter.Seq[T], options ...Option[T]) (*DynamicBuffer[T], error) {
	return newDynamicFrom(HeapAllocator[T]{}, values, "NewDynamicFrom", options...)
}

// NewDynamicOf creates a buffer holding values in order, with capacity len(values).
func NewDynamicOf[T any](values ...T) (*DynamicBuffer[T], error) {
	return newDynamicFrom(HeapAllocator[T]{}, slices.Values(values), "NewDynamicOf", WithCapacity[T](len(values)))
}

func newDynamicFrom[T any, M Allocator[T]](alloc M, values iter.Seq[T], method string, options ...Option[T]) (*Dynamic[T, M], error) {
	opts := applyOptions(options...)

	capacity := opts.capacity
	if capacity < 0 {
		collected := slices.Collect(values)
		capacity = len(collected)
		values = slices.Values(collected)
	}

	d := &Dynamic[T, M]{}
	d.store.alloc = alloc
	d.life.opts = opts

	block, err := d.store.obtain(capacity)
	if err != nil {
		return nil, allocError(err, method)
	}
	n, err := d.life.stage(block, values)
	if err != nil {
		d.store.release(block)
		return nil, stageError(err, "Dynamic", method)
	}

	d.store.block = block
	d.size = n
	if err := d.setup(opts, "Dynamic", method); err != nil {
		clear(block)
		d.store.release(block)
		return nil, err
	}
	d.life.commit(block, n)
	return d, nil
}

func allocError(err error, method string) error {
	return errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrAllocationFailed, err), "Dynamic", method, "allocate storage")
}

// Reserve sets the capacity to n. Elements past the first n are destroyed;
// the rest move to new storage in order, starting at slot 0. If allocation
// fails the buffer is unchanged. Iterators are invalidated.
func (d *Dynamic[T, M]) Reserve(n int) error {
	return d.reallocate(n, "Reserve")
}

// Resize is equivalent to Reserve.
func (d *Dynamic[T, M]) Resize(n int) error {
	return d.reallocate(n, "Resize")
}

func (d *Dynamic[T, M]) reallocate(n int, method string) error {
	if n < 0 {
		return errors.WrapInvalid(errors.ErrOutOfRange, "Dynamic", method, fmt.Sprintf("validate capacity %d", n))
	}

	old := d.store.block
	if n == len(old) {
		return nil
	}

	block, err := d.store.obtain(n)
	if err != nil {
		return allocError(err, method)
	}

	keep := min(d.size, n)
	c := len(old)
	for i := keep; i < d.size; i++ {
		d.life.destroy(old, physical(d.head, i, c))
	}
	relocate(block, old, d.head, keep)
	d.store.release(old)

	d.store.block = block
	d.head, d.size = 0, keep
	d.epoch++
	d.life.stats.realloc()
	d.observe()
	return nil
}

// install replaces the storage with block, whose first n slots hold staged
// elements.
func (d *Dynamic[T, M]) install(block []T, n int) {
	old := d.store.block
	d.life.destroySpan(old, d.head, d.size)
	d.store.release(old)

	d.store.block = block
	d.head, d.size = 0, n
	d.life.commit(block, n)
	if len(block) != len(old) {
		d.epoch++
	}
	d.life.stats.realloc()
	d.observe()
}

// Allocator returns the allocator the storage comes from.
func (d *Dynamic[T, M]) Allocator() M { return d.store.alloc }

// Clone returns a deep copy with the same capacity, made with the configured
// copier. The clone gets a forked allocator and keeps the copier and hooks
// but not the metrics registration.
func (d *Dynamic[T, M]) Clone() (*Dynamic[T, M], error) {
	dst := &Dynamic[T, M]{}
	dst.store.alloc = fork[T](d.store.alloc)
	dst.life.opts = d.life.inherit()

	block, err := dst.store.obtain(d.Cap())
	if err != nil {
		return nil, allocError(err, "Clone")
	}
	n, err := dst.life.stage(block, d.Values())
	if err != nil {
		dst.store.release(block)
		return nil, stageError(err, "Dynamic", "Clone")
	}

	dst.store.block = block
	dst.size = n
	dst.life.commit(block, n)
	dst.observe()
	return dst, nil
}

// CopyFrom replaces the contents with copies of the elements of src and
// adopts its capacity. On failure the buffer keeps its previous contents.
func (d *Dynamic[T, M]) CopyFrom(src *Dynamic[T, M]) error {
	if src == d {
		return nil
	}
	return d.replace(src.Cap(), src.Values(), "CopyFrom")
}

// Assign replaces the contents with the elements of values, keeping the
// capacity. It fails with ErrOverflow when values does not fit, leaving the
// buffer unchanged.
func (d *Dynamic[T, M]) Assign(values iter.Seq[T]) error {
	return d.replace(d.Cap(), values, "Assign")
}

func (d *Dynamic[T, M]) replace(capacity int, values iter.Seq[T], method string) error {
	block, err := d.store.obtain(capacity)
	if err != nil {
		return allocError(err, method)
	}
	n, err := d.life.stage(block, values)
	if err != nil {
		d.store.release(block)
		return stageError(err, "Dynamic", method)
	}
	d.install(block, n)
	return nil
}

// Take transfers the storage to a new buffer in constant time and leaves d
// empty with capacity zero.
func (d *Dynamic[T, M]) Take() *Dynamic[T, M] {
	dst := &Dynamic[T, M]{}
	dst.life.opts = d.life.inherit()
	dst.MoveFrom(d)
	return dst
}

// MoveFrom destroys the current elements, releases the current storage and
// takes over the storage and allocator of src in constant time. src is left
// empty with capacity zero and a forked allocator. The moved elements count
// as constructions in d and destructions in src.
func (d *Dynamic[T, M]) MoveFrom(src *Dynamic[T, M]) {
	if src == d {
		return
	}

	d.life.destroySpan(d.store.block, d.head, d.size)
	d.store.release(d.store.block)

	d.store = src.store
	d.head, d.size = src.head, src.size
	d.life.adopt(d.store.block, d.head, d.size)
	src.life.disown(d.store.block, d.head, d.size)

	src.store.block = nil
	src.store.alloc = fork[T](src.store.alloc)
	src.head, src.size = 0, 0

	d.epoch++
	src.epoch++
	d.observe()
	src.observe()
}

// Close destroys every element, releases the storage and unregisters the
// buffer metrics. The buffer is left with capacity zero.
func (d *Dynamic[T, M]) Close() error {
	d.Clear()
	d.store.release(d.store.block)
	d.store.block = nil
	d.epoch++
	d.observe()
	d.closeMetrics()
	return nil
}
