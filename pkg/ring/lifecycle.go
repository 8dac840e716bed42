package ring

import (
	"iter"

	"github.com/c360/ringbuffer/errors"
)

// lifecycle constructs and destroys single slots and keeps the accounting.
// A slot holds either the zero value (empty) or a live element. Writing a
// slot without going through construct is a relocation, not a construction.
type lifecycle[T any] struct {
	opts    *ringOptions[T]
	stats   Statistics
	metrics *ringMetrics
}

func (l *lifecycle[T]) constructed(v T) {
	l.stats.construct()
	if l.metrics != nil {
		l.metrics.constructions.Inc()
	}
	if l.opts != nil && l.opts.onConstruct != nil {
		l.opts.onConstruct(v)
	}
}

// construct makes v live in the empty slot i.
func (l *lifecycle[T]) construct(slots []T, i int, v T) {
	slots[i] = v
	l.constructed(v)
}

// emplace builds an element directly in the empty slot i. If fn fails the
// slot is reset to empty and nothing is recorded.
func (l *lifecycle[T]) emplace(slots []T, i int, fn func(*T) error) error {
	if err := fn(&slots[i]); err != nil {
		var zero T
		slots[i] = zero
		return err
	}
	l.constructed(slots[i])
	return nil
}

// destroy ends the life of the element in slot i, empties the slot and
// returns the element.
func (l *lifecycle[T]) destroy(slots []T, i int) T {
	var zero T
	v := slots[i]
	slots[i] = zero
	l.stats.destroy()
	if l.metrics != nil {
		l.metrics.destructions.Inc()
	}
	if l.opts != nil && l.opts.onDestroy != nil {
		l.opts.onDestroy(v)
	}
	return v
}

// destroySpan destroys the n live elements starting at slot head.
func (l *lifecycle[T]) destroySpan(slots []T, head, n int) {
	c := len(slots)
	for i := 0; i < n; i++ {
		l.destroy(slots, physical(head, i, c))
	}
}

// adopt records the n live elements starting at slot head as constructed
// here. The elements were handed over by another buffer together with its
// storage, so the counters move in bulk and only the hook sees each one.
func (l *lifecycle[T]) adopt(slots []T, head, n int) {
	l.stats.constructN(n)
	if l.metrics != nil {
		l.metrics.constructions.Add(float64(n))
	}
	if l.opts != nil && l.opts.onConstruct != nil {
		for i := range n {
			l.opts.onConstruct(slots[physical(head, i, len(slots))])
		}
	}
}

// disown records the n live elements starting at slot head as destroyed here
// without touching the slots, which now belong to another buffer.
func (l *lifecycle[T]) disown(slots []T, head, n int) {
	l.stats.destroyN(n)
	if l.metrics != nil {
		l.metrics.destructions.Add(float64(n))
	}
	if l.opts != nil && l.opts.onDestroy != nil {
		for i := range n {
			l.opts.onDestroy(slots[physical(head, i, len(slots))])
		}
	}
}

// duplicate copies v through the configured copier.
func (l *lifecycle[T]) duplicate(v T) (T, error) {
	if l.opts == nil || l.opts.copier == nil {
		return v, nil
	}
	return l.opts.copier(v)
}

// stage writes copies of values into dst from slot 0 on without making them
// live. It fails with ErrOverflow when values does not fit, or with the copier
// error; either way dst is left empty.
func (l *lifecycle[T]) stage(dst []T, values iter.Seq[T]) (int, error) {
	n := 0
	for v := range values {
		if n == len(dst) {
			clear(dst[:n])
			return 0, errors.ErrOverflow
		}
		c, err := l.duplicate(v)
		if err != nil {
			clear(dst[:n])
			return 0, err
		}
		dst[n] = c
		n++
	}
	return n, nil
}

// commit records the staged elements dst[:n] as live.
func (l *lifecycle[T]) commit(dst []T, n int) {
	for i := 0; i < n; i++ {
		l.constructed(dst[i])
	}
}

// inherit returns the options a derived buffer (Clone, Take) starts with:
// the same copier and hooks, without metrics.
func (l *lifecycle[T]) inherit() *ringOptions[T] {
	if l.opts == nil {
		return nil
	}
	opts := *l.opts
	opts.metricsReg = nil
	opts.metricsPrefix = ""
	return &opts
}

func repeat[T any](n int, v T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < n; i++ {
			if !yield(v) {
				return
			}
		}
	}
}
