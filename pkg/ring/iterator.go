package ring

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/c360/ringbuffer/errors"
)

// view is the part of a buffer an iterator needs.
type view[T any] interface {
	Len() int
	ref(offset int) *T
	generation() uint64
}

// Cursor is implemented by Iterator and ConstIterator so either kind can be
// compared with the other.
type Cursor[T any] interface {
	cursor() (view[T], int)
}

// Iterator is a random-access position in a buffer. It identifies a logical
// offset in [0, Len()], not a slot: after an eviction the same iterator
// yields whatever element now sits at its offset. Iterators are values;
// assignment copies them.
//
// Stepping outside [0, Len()] or dereferencing End() panics with an error
// wrapping ErrOutOfRange. Dereferencing after the buffer changed capacity
// panics with ErrStaleIterator.
type Iterator[T any] struct {
	buf view[T]
	off int
	gen uint64
}

func (it Iterator[T]) cursor() (view[T], int) { return it.buf, it.off }

// Offset returns the logical offset from the front.
func (it Iterator[T]) Offset() int { return it.off }

// Const returns a read-only iterator at the same position.
func (it Iterator[T]) Const() ConstIterator[T] { return ConstIterator[T]{it: it} }

// Value returns the element at the iterator.
func (it Iterator[T]) Value() T { return *it.deref("Value") }

// Ptr returns a pointer to the element at the iterator.
func (it Iterator[T]) Ptr() *T { return it.deref("Ptr") }

// Set overwrites the element at the iterator.
func (it Iterator[T]) Set(v T) { *it.deref("Set") = v }

// Next returns the iterator one position further.
func (it Iterator[T]) Next() Iterator[T] { return it.moveTo(it.off+1, "Next") }

// Prev returns the iterator one position back.
func (it Iterator[T]) Prev() Iterator[T] { return it.moveTo(it.off-1, "Prev") }

// Add returns the iterator n positions further; n may be negative.
func (it Iterator[T]) Add(n int) Iterator[T] { return it.moveTo(it.off+n, "Add") }

// Sub returns the iterator n positions back; n may be negative.
func (it Iterator[T]) Sub(n int) Iterator[T] { return it.moveTo(it.off-n, "Sub") }

// Distance returns the number of steps from o to it, so that
// End().Distance(Begin()) == Len().
func (it Iterator[T]) Distance(o Cursor[T]) int {
	return distance(it.peer(o, "Distance"), it.off)
}

// Equal reports whether it and o point at the same position of the same
// buffer.
func (it Iterator[T]) Equal(o Cursor[T]) bool {
	buf, off := o.cursor()
	return buf == it.buf && off == it.off
}

// Less reports whether it is before o.
func (it Iterator[T]) Less(o Cursor[T]) bool {
	return it.off < it.peer(o, "Less")
}

// Compare returns -1, 0 or +1 as it is before, at or after o.
func (it Iterator[T]) Compare(o Cursor[T]) int {
	return cmp.Compare(it.off, it.peer(o, "Compare"))
}

// peer returns the offset of o, which must belong to the same buffer.
func (it Iterator[T]) peer(o Cursor[T], op string) int {
	buf, off := o.cursor()
	if buf != it.buf {
		panic(errors.WrapInvalid(errors.ErrForeignIterator, "Iterator", op, "compare"))
	}
	return off
}

func (it Iterator[T]) moveTo(off int, op string) Iterator[T] {
	n := 0
	if it.buf != nil {
		n = it.buf.Len()
	}
	if off < 0 || off > n {
		panic(errors.WrapInvalid(errors.ErrOutOfRange, "Iterator", op, fmt.Sprintf("step to offset %d of %d", off, n)))
	}
	it.off = off
	return it
}

func (it Iterator[T]) deref(op string) *T {
	if it.buf == nil || it.off < 0 || it.off >= it.buf.Len() {
		panic(errors.WrapInvalid(errors.ErrOutOfRange, "Iterator", op, fmt.Sprintf("dereference offset %d", it.off)))
	}
	if it.gen != it.buf.generation() {
		panic(errors.WrapInvalid(errors.ErrStaleIterator, "Iterator", op, "dereference"))
	}
	return it.buf.ref(it.off)
}

// ConstIterator is the read-only form of Iterator. There is no conversion
// back to Iterator.
type ConstIterator[T any] struct {
	it Iterator[T]
}

func (c ConstIterator[T]) cursor() (view[T], int) { return c.it.cursor() }

// Offset returns the logical offset from the front.
func (c ConstIterator[T]) Offset() int { return c.it.off }

// Value returns the element at the iterator.
func (c ConstIterator[T]) Value() T { return c.it.Value() }

// Next returns the iterator one position further.
func (c ConstIterator[T]) Next() ConstIterator[T] { return ConstIterator[T]{it: c.it.Next()} }

// Prev returns the iterator one position back.
func (c ConstIterator[T]) Prev() ConstIterator[T] { return ConstIterator[T]{it: c.it.Prev()} }

// Add returns the iterator n positions further.
func (c ConstIterator[T]) Add(n int) ConstIterator[T] { return ConstIterator[T]{it: c.it.Add(n)} }

// Sub returns the iterator n positions back.
func (c ConstIterator[T]) Sub(n int) ConstIterator[T] { return ConstIterator[T]{it: c.it.Sub(n)} }

// Distance returns the number of steps from o to c.
func (c ConstIterator[T]) Distance(o Cursor[T]) int { return c.it.Distance(o) }

// Equal reports whether c and o point at the same position of the same buffer.
func (c ConstIterator[T]) Equal(o Cursor[T]) bool { return c.it.Equal(o) }

// Less reports whether c is before o.
func (c ConstIterator[T]) Less(o Cursor[T]) bool { return c.it.Less(o) }

// Compare returns -1, 0 or +1 as c is before, at or after o.
func (c ConstIterator[T]) Compare(o Cursor[T]) int { return c.it.Compare(o) }

// Swap exchanges two iterators.
func Swap[T any](a, b *Iterator[T]) {
	*a, *b = *b, *a
}

// Range yields the elements from first up to, not including, last. Both must
// belong to the same buffer. Range(b.CBegin(), b.CEnd()) can seed another
// buffer through NewFixedFrom or NewDynamicFrom.
func Range[T any](first, last ConstIterator[T]) iter.Seq[T] {
	end := first.it.peer(last, "Range")
	return func(yield func(T) bool) {
		for it := first; it.it.off < end; it = it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}
