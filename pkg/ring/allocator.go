package ring

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Allocator obtains and releases slot blocks for a Dynamic buffer.
//
// Allocate must return a block of exactly n zero-valued slots. Deallocate
// receives every block the buffer stops using; the buffer never touches the
// block afterwards. An allocator instance is owned by a single buffer: value
// allocators are copied into derived buffers, and stateful ones implement
// Forker. A pointer allocator without Fork ends up shared by a buffer and its
// clones.
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Deallocate(block []T)
}

// Forker is implemented by allocators that carry state. Fork returns a new
// allocator with the same configuration and none of the state.
type Forker[M any] interface {
	Fork() M
}

// fork returns the allocator for a buffer derived from one using alloc
// (Clone, or the source left behind by MoveFrom).
func fork[T any, M Allocator[T]](alloc M) M {
	if f, ok := any(alloc).(Forker[M]); ok {
		return f.Fork()
	}
	return alloc
}

// HeapAllocator allocates blocks with make and leaves reclamation to the
// garbage collector. The zero value is ready to use.
type HeapAllocator[T any] struct{}

// Allocate returns a fresh block of n slots.
func (HeapAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative block size %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	return make([]T, n), nil
}

// Deallocate does nothing; the block becomes garbage.
func (HeapAllocator[T]) Deallocate([]T) {}

// PoolStats reports PoolAllocator activity.
type PoolStats struct {
	TotalAlloc int64 `json:"total_alloc"` // blocks created with make
	Reused     int64 `json:"reused"`      // blocks served from a pool
	Released   int64 `json:"released"`    // blocks handed back
}

// PoolAllocator recycles blocks through one sync.Pool per block size, so a
// buffer that is resized back and forth between the same capacities stops
// allocating. Use NewPoolAllocator; the zero value is not usable.
type PoolAllocator[T any] struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool

	totalAlloc atomic.Int64
	reused     atomic.Int64
	released   atomic.Int64
}

// NewPoolAllocator creates an empty PoolAllocator.
func NewPoolAllocator[T any]() *PoolAllocator[T] {
	return &PoolAllocator[T]{pools: make(map[int]*sync.Pool)}
}

func (p *PoolAllocator[T]) pool(n int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.pools[n]
	if !ok {
		sp = &sync.Pool{}
		p.pools[n] = sp
	}
	return sp
}

// Allocate returns a zeroed block of n slots, reusing a released one when
// available.
func (p *PoolAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative block size %d", n)
	}
	if n == 0 {
		return nil, nil
	}

	if v := p.pool(n).Get(); v != nil {
		p.reused.Add(1)
		return *(v.(*[]T)), nil
	}

	p.totalAlloc.Add(1)
	return make([]T, n), nil
}

// Deallocate zeroes block and keeps it for the next Allocate of the same size.
func (p *PoolAllocator[T]) Deallocate(block []T) {
	if len(block) == 0 {
		return
	}
	clear(block)
	p.pool(len(block)).Put(&block)
	p.released.Add(1)
}

// Fork returns a new, empty PoolAllocator.
func (p *PoolAllocator[T]) Fork() *PoolAllocator[T] {
	return NewPoolAllocator[T]()
}

// Stats returns a snapshot of the allocator counters.
func (p *PoolAllocator[T]) Stats() PoolStats {
	return PoolStats{
		TotalAlloc: p.totalAlloc.Load(),
		Reused:     p.reused.Load(),
		Released:   p.released.Load(),
	}
}
