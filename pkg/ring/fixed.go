package ring

import (
	stderrors "errors"
	"iter"
	"slices"

	"github.com/c360/ringbuffer/errors"
)

// Fixed is a ring buffer whose slots are embedded in the value, so it never
// allocates storage. A must be an array type [N]T; the capacity is N. The
// constructors panic for any other A, and so does first use of a zero value.
//
// The zero value is an empty buffer ready to use. A Fixed must not be copied
// after first use; use Clone or Take instead.
type Fixed[T any, A any] struct {
	ring[T, inline[T, A], *inline[T, A]]
}

// NewFixed creates an empty buffer.
func NewFixed[T any, A any](options ...Option[T]) (*Fixed[T, A], error) {
	f := &Fixed[T, A]{}
	f.slots()
	if err := f.setup(applyOptions(options...), "Fixed", "NewFixed"); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFixedFilled creates a buffer holding n copies of value. It fails with
// ErrOverflow when n exceeds the capacity.
func NewFixedFilled[T any, A any](n int, value T, options ...Option[T]) (*Fixed[T, A], error) {
	if n < 0 {
		return nil, errors.WrapInvalid(errors.ErrOutOfRange, "Fixed", "NewFixedFilled", "validate count")
	}
	return newFixedFrom[T, A](repeat(n, value), "NewFixedFilled", options...)
}

// NewFixedFrom creates a buffer holding the elements of values in order. It
// fails with ErrOverflow, and creates nothing, when values yields more
// elements than the capacity.
func NewFixedFrom[T any, A any](values iter.Seq[T], options ...Option[T]) (*Fixed[T, A], error) {
	return newFixedFrom[T, A](values, "NewFixedFrom", options...)
}

// NewFixedOf creates a buffer holding values in order.
func NewFixedOf[T any, A any](values ...T) (*Fixed[T, A], error) {
	return newFixedFrom[T, A](slices.Values(values), "NewFixedOf")
}

func newFixedFrom[T any, A any](values iter.Seq[T], method string, options ...Option[T]) (*Fixed[T, A], error) {
	opts := applyOptions(options...)

	f := &Fixed[T, A]{}
	f.life.opts = opts
	s := f.slots()
	n, err := f.life.stage(s, values)
	if err != nil {
		return nil, stageError(err, "Fixed", method)
	}

	f.size = n
	if err := f.setup(opts, "Fixed", method); err != nil {
		return nil, err
	}
	f.life.commit(s, n)
	return f, nil
}

// stageError classifies a failure reported by lifecycle.stage.
func stageError(err error, component, method string) error {
	if stderrors.Is(err, errors.ErrOverflow) {
		return errors.WrapInvalid(err, component, method, "populate")
	}
	return errors.Wrap(err, component, method, "copy element")
}

// Clone returns a deep copy made with the configured copier. The clone keeps
// the copier and hooks but not the metrics registration.
func (f *Fixed[T, A]) Clone() (*Fixed[T, A], error) {
	dst := &Fixed[T, A]{}
	dst.life.opts = f.life.inherit()

	s := dst.slots()
	n, err := dst.life.stage(s, f.Values())
	if err != nil {
		return nil, stageError(err, "Fixed", "Clone")
	}
	dst.size = n
	dst.life.commit(s, n)
	dst.observe()
	return dst, nil
}

// CopyFrom replaces the contents with copies of the elements of src. If a
// copy fails the buffer keeps its previous contents.
func (f *Fixed[T, A]) CopyFrom(src *Fixed[T, A]) error {
	if src == f {
		return nil
	}
	return f.replace(src.Values(), "CopyFrom")
}

// Assign replaces the contents with the elements of values. It fails with
// ErrOverflow when values does not fit, leaving the buffer unchanged.
func (f *Fixed[T, A]) Assign(values iter.Seq[T]) error {
	return f.replace(values, "Assign")
}

func (f *Fixed[T, A]) replace(values iter.Seq[T], method string) error {
	staged := new(inline[T, A])
	n, err := f.life.stage(staged.slots(), values)
	if err != nil {
		return stageError(err, "Fixed", method)
	}

	f.life.destroySpan(f.slots(), f.head, f.size)
	f.store = *staged
	f.head = 0
	f.size = n
	f.life.commit(f.slots(), n)
	f.observe()
	return nil
}

// Take moves the elements into a new buffer one by one and leaves f empty.
// Each element is constructed in the new buffer and destroyed in f.
func (f *Fixed[T, A]) Take() *Fixed[T, A] {
	dst := &Fixed[T, A]{}
	dst.life.opts = f.life.inherit()
	dst.MoveFrom(f)
	return dst
}

// MoveFrom destroys the current elements and moves the elements of src in,
// one by one, leaving src empty. Every moved element counts as a construction
// in f and a destruction in src.
func (f *Fixed[T, A]) MoveFrom(src *Fixed[T, A]) {
	if src == f {
		return
	}

	dst := f.slots()
	f.life.destroySpan(dst, f.head, f.size)

	s := src.slots()
	n := src.size
	for i := range n {
		j := physical(src.head, i, len(s))
		f.life.construct(dst, i, s[j])
		src.life.destroy(s, j)
	}
	f.head, f.size = 0, n
	src.head, src.size = 0, 0

	f.observe()
	src.observe()
}

// Close destroys every element and unregisters the buffer metrics.
func (f *Fixed[T, A]) Close() error {
	f.Clear()
	f.closeMetrics()
	return nil
}
