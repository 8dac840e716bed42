package ring

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/eapache/queue"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/ringbuffer/errors"
)

func filledDynamic(t *testing.T, capacity, pushed int) *DynamicBuffer[int] {
	t.Helper()
	b, err := NewDynamic[int](capacity)
	require.NoError(t, err)
	fill(b, pushed)
	return b
}

func TestDynamicReserveAndResize(t *testing.T) {
	var b DynamicBuffer[int]
	assert.Equal(t, 0, b.Cap())

	steps := []struct {
		op       string
		capacity int
	}{
		{"Reserve", 5},
		{"Resize", 10},
		{"Reserve", 3},
		{"Resize", 7},
	}
	for _, s := range steps {
		var err error
		if s.op == "Reserve" {
			err = b.Reserve(s.capacity)
		} else {
			err = b.Resize(s.capacity)
		}
		require.NoError(t, err)
		assert.Equal(t, 0, b.Len(), "%s(%d)", s.op, s.capacity)
		assert.Equal(t, s.capacity, b.Cap(), "%s(%d)", s.op, s.capacity)
	}

	require.ErrorIs(t, b.Reserve(-1), cerrors.ErrOutOfRange)
	assert.Equal(t, int64(4), b.Stats().Reallocations())
}

func TestDynamicResizeKeepsFront(t *testing.T) {
	t.Run("shrink then grow", func(t *testing.T) {
		b := filledDynamic(t, 12, 6)
		require.Equal(t, 6, b.Len())

		require.NoError(t, b.Resize(3))
		assert.Equal(t, 3, b.Len())
		assert.Equal(t, []int{0, 1, 2}, b.Slice())

		require.NoError(t, b.Resize(20))
		assert.Equal(t, 3, b.Len())
		assert.Equal(t, 20, b.Cap())
		assert.Equal(t, []int{0, 1, 2}, b.Slice())
	})

	t.Run("window slides after shrink", func(t *testing.T) {
		inc := incrementing(512)
		b, err := NewDynamicFrom(slices.Values(inc))
		require.NoError(t, err)
		require.Equal(t, 512, b.Len())
		require.Equal(t, 512, b.Cap())

		require.NoError(t, b.Resize(5))
		assert.Equal(t, inc[:5], b.Slice())

		b.PushBack(5)
		assert.Equal(t, inc[1:6], b.Slice())
	})

	t.Run("wrapped storage", func(t *testing.T) {
		b := filledDynamic(t, 4, 10) // holds 6..9, head mid-block
		require.NoError(t, b.Reserve(6))
		assert.Equal(t, []int{6, 7, 8, 9}, b.Slice())
		b.PushFront(5)
		b.PushFront(4)
		b.PushFront(3)
		assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, b.Slice())
	})

	t.Run("destroys truncated elements", func(t *testing.T) {
		var destroyed []int
		b, err := NewDynamic[int](8, WithDestroyHook(func(v int) {
			destroyed = append(destroyed, v)
		}))
		require.NoError(t, err)
		fill(b, 8)

		require.NoError(t, b.Resize(5))
		assert.ElementsMatch(t, []int{5, 6, 7}, destroyed)
		assert.Equal(t, int64(5), b.Stats().Live())
	})
}

func TestDynamicConstruction(t *testing.T) {
	t.Run("capacity", func(t *testing.T) {
		b, err := NewDynamic[int](5)
		require.NoError(t, err)
		assert.Equal(t, 5, b.Cap())
		b.Clear()
		assert.Equal(t, 5, b.Cap())

		_, err = NewDynamic[int](-1)
		require.ErrorIs(t, err, cerrors.ErrOutOfRange)
	})

	t.Run("filled", func(t *testing.T) {
		b, err := NewDynamicFilled(4, float32(2.0))
		require.NoError(t, err)
		assert.Equal(t, 4, b.Len())
		assert.Equal(t, 4, b.Cap())
		for v := range b.Values() {
			assert.Equal(t, float32(2.0), v)
		}

		wide, err := NewDynamicFilled(4, 1, WithCapacity[int](10))
		require.NoError(t, err)
		assert.Equal(t, 10, wide.Cap())
	})

	t.Run("from range", func(t *testing.T) {
		src := filledDynamic(t, 16, 15)
		b, err := NewDynamicFrom(Range(src.CBegin(), src.CEnd()))
		require.NoError(t, err)
		assert.Equal(t, src.Len(), b.Len())
		assert.Equal(t, src.Len(), b.Cap())
		assert.Equal(t, src.Slice(), b.Slice())
	})

	t.Run("from list", func(t *testing.T) {
		b, err := NewDynamicOf(1, 2, 3, 4)
		require.NoError(t, err)
		other, err := NewDynamicFrom(Range(b.CBegin(), b.CEnd()))
		require.NoError(t, err)
		assert.Equal(t, b.Slice(), other.Slice())
	})

	t.Run("explicit capacity overflow", func(t *testing.T) {
		_, err := NewDynamicFrom(slices.Values(incrementing(5)), WithCapacity[int](4))
		require.ErrorIs(t, err, cerrors.ErrOverflow)

		b, err := NewDynamicFrom(slices.Values(incrementing(3)), WithCapacity[int](4))
		require.NoError(t, err)
		assert.Equal(t, 4, b.Cap())
		assert.Equal(t, 3, b.Len())
	})
}

func TestDynamicCopy(t *testing.T) {
	src := filledDynamic(t, 16, 15)

	t.Run("Clone", func(t *testing.T) {
		clone, err := src.Clone()
		require.NoError(t, err)
		assert.Equal(t, src.Slice(), clone.Slice())
		assert.Equal(t, src.Cap(), clone.Cap())
	})

	t.Run("CopyFrom adopts capacity", func(t *testing.T) {
		other, err := NewDynamic[int](src.Len())
		require.NoError(t, err)
		other.PushBack(-1)

		require.NoError(t, other.CopyFrom(src))
		if diff := cmp.Diff(src.Slice(), other.Slice()); diff != "" {
			t.Errorf("contents mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, src.Cap(), other.Cap())
	})

	t.Run("Assign keeps capacity", func(t *testing.T) {
		b := filledDynamic(t, 4, 2)
		require.ErrorIs(t, b.Assign(slices.Values(incrementing(5))), cerrors.ErrOverflow)
		assert.Equal(t, []int{0, 1}, b.Slice())

		require.NoError(t, b.Assign(slices.Values([]int{9, 8, 7})))
		assert.Equal(t, []int{9, 8, 7}, b.Slice())
		assert.Equal(t, 4, b.Cap())
	})
}

func TestDynamicMove(t *testing.T) {
	src := filledDynamic(t, 16, 15)
	want := src.Slice()

	t.Run("Take transfers storage", func(t *testing.T) {
		temp, err := src.Clone()
		require.NoError(t, err)
		first := temp.Ref(0)

		other := temp.Take()
		assert.Equal(t, want, other.Slice())
		assert.Same(t, first, other.Ref(0))
		assert.Equal(t, 0, temp.Len())
		assert.Equal(t, 0, temp.Cap())
	})

	t.Run("MoveFrom", func(t *testing.T) {
		temp, err := src.Clone()
		require.NoError(t, err)

		var other DynamicBuffer[int]
		require.NoError(t, other.Reserve(2))
		other.PushBack(42)

		other.MoveFrom(temp)
		assert.Equal(t, want, other.Slice())
		assert.Equal(t, 16, other.Cap())
		assert.True(t, temp.Empty())
	})
}

// failingAllocator hands out blocks until its budget runs out.
type failingAllocator struct {
	budget   int
	released int
}

var errNoMemory = errors.New("no memory")

func (a *failingAllocator) Allocate(n int) ([]int, error) {
	if a.budget == 0 {
		return nil, errNoMemory
	}
	a.budget--
	return make([]int, n), nil
}

func (a *failingAllocator) Deallocate([]int) { a.released++ }

// shortAllocator returns blocks one slot too small.
type shortAllocator struct{}

func (shortAllocator) Allocate(n int) ([]int, error) { return make([]int, max(n-1, 0)), nil }
func (shortAllocator) Deallocate([]int)              {}

func TestDynamicAllocatorFailure(t *testing.T) {
	alloc := &failingAllocator{budget: 1}
	b, err := NewDynamicWithAllocator[int](alloc, 4)
	require.NoError(t, err)
	fill(b, 6)

	err = b.Reserve(8)
	require.ErrorIs(t, err, errNoMemory)
	require.ErrorIs(t, err, cerrors.ErrAllocationFailed)
	assert.True(t, cerrors.IsTransient(err))
	assert.Equal(t, []int{2, 3, 4, 5}, b.Slice())
	assert.Equal(t, 4, b.Cap())

	clone, err := b.Clone()
	require.Error(t, err)
	assert.Nil(t, clone)

	require.NoError(t, b.Close())
	assert.Equal(t, 1, alloc.released)

	_, err = NewDynamicWithAllocator[int](shortAllocator{}, 4)
	require.ErrorIs(t, err, cerrors.ErrAllocationFailed)
}

func TestPoolAllocator(t *testing.T) {
	pool := NewPoolAllocator[int]()
	b, err := NewDynamicWithAllocator[int](pool, 8)
	require.NoError(t, err)
	fill(b, 8)

	require.NoError(t, b.Resize(4))
	require.NoError(t, b.Resize(8))
	assert.Equal(t, []int{0, 1, 2, 3}, b.Slice())

	stats := pool.Stats()
	assert.Equal(t, int64(2), stats.Released)
	assert.Equal(t, stats.TotalAlloc+stats.Reused, int64(3))

	for _, v := range b.Slice() {
		assert.Less(t, v, 4)
	}
	require.NoError(t, b.Close())
	assert.Equal(t, int64(3), pool.Stats().Released)

	block, err := pool.Allocate(8)
	require.NoError(t, err)
	assert.Len(t, block, 8)
	assert.Equal(t, make([]int, 8), block, "recycled blocks come back zeroed")
}

func TestDerivedBuffersForkPoolAllocator(t *testing.T) {
	pool := NewPoolAllocator[int]()
	b, err := NewDynamicWithAllocator[int](pool, 4)
	require.NoError(t, err)
	fill(b, 4)

	clone, err := b.Clone()
	require.NoError(t, err)
	assert.Same(t, pool, b.Allocator())
	assert.NotSame(t, pool, clone.Allocator())

	require.NoError(t, clone.Close())
	assert.Equal(t, int64(1), clone.Allocator().Stats().Released)
	assert.Zero(t, pool.Stats().Released)

	moved := b.Take()
	assert.Same(t, pool, moved.Allocator())
	assert.NotSame(t, pool, b.Allocator())

	require.NoError(t, b.Reserve(2))
	assert.Equal(t, int64(1), b.Allocator().Stats().TotalAlloc)
	assert.Equal(t, int64(1), pool.Stats().TotalAlloc)
}

// TestDynamicMatchesReferenceQueue drives a buffer and a reference FIFO with
// the same random operations. The reference evicts its oldest element by hand
// when it reaches capacity.
func TestDynamicMatchesReferenceQueue(t *testing.T) {
	for _, capacity := range []int{1, 3, 16} {
		rng := rand.New(rand.NewPCG(uint64(capacity), 42))
		b, err := NewDynamic[int](capacity)
		require.NoError(t, err)
		ref := queue.New()

		for step := 0; step < 5000; step++ {
			if rng.IntN(3) > 0 {
				v := rng.Int()
				b.PushBack(v)
				if ref.Length() == capacity {
					ref.Remove()
				}
				ref.Add(v)
			} else {
				got, err := b.PopFront()
				if ref.Length() == 0 {
					require.ErrorIs(t, err, cerrors.ErrEmpty)
					continue
				}
				require.NoError(t, err)
				require.Equal(t, ref.Remove(), got)
			}

			require.Equal(t, ref.Length(), b.Len())
			if ref.Length() > 0 {
				require.Equal(t, ref.Peek(), front(t, b))
				require.Equal(t, ref.Get(-1), back(t, b))
			}
		}

		for i := 0; i < ref.Length(); i++ {
			got, err := b.At(i)
			require.NoError(t, err)
			require.Equal(t, ref.Get(i), got)
		}
		require.NoError(t, b.Close())
		assert.Equal(t, int64(0), b.Stats().Live())
	}
}
