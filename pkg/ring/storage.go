package ring

import (
	"fmt"
	"reflect"
	"unsafe"
)

// slotter is satisfied by pointers to storage backends. The container is
// parameterised over it so the backend is fixed at compile time.
type slotter[T any, S any] interface {
	*S
	slots() []T
}

// inline embeds its slots in the owning value. A must be an array type [N]T.
type inline[T any, A any] struct {
	array A
	n     int // slot count plus one, zero until first use
}

// slotCount returns N for A = [N]T and panics for any other A.
func slotCount[T any, A any]() int {
	at := reflect.TypeFor[A]()
	if at.Kind() != reflect.Array || at.Elem() != reflect.TypeFor[T]() {
		panic(fmt.Sprintf("ring: inline storage type %v is not an array of %v", at, reflect.TypeFor[T]()))
	}
	return at.Len()
}

func (s *inline[T, A]) slots() []T {
	if s.n == 0 {
		s.n = slotCount[T, A]() + 1
	}
	if s.n == 1 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&s.array)), s.n-1)
}

// heap keeps its slots in a block obtained from an allocator. A nil block
// means capacity zero.
type heap[T any, M Allocator[T]] struct {
	block []T
	alloc M
}

func (s *heap[T, M]) slots() []T {
	return s.block
}

// obtain asks the allocator for a block of n slots and checks its shape.
func (s *heap[T, M]) obtain(n int) ([]T, error) {
	block, err := s.alloc.Allocate(n)
	if err != nil {
		return nil, err
	}
	if len(block) != n {
		if len(block) > 0 {
			s.alloc.Deallocate(block)
		}
		return nil, fmt.Errorf("allocator returned %d slots, want %d", len(block), n)
	}
	return block, nil
}

// release hands a block back to the allocator.
func (s *heap[T, M]) release(block []T) {
	if len(block) > 0 {
		s.alloc.Deallocate(block)
	}
}
