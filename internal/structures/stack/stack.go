// Package stack implements a Treiber-style indexed stack: a single atomic
// top index and a fixed-capacity slot array, bump-allocated like the
// queue rather than linked, since slot indices stand in for the pointers
// a textbook Treiber stack would chain.
package stack

import (
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Stack is a typed view over a Treiber-style indexed stack's header and
// payload.
type Stack[T any] struct {
	hdr  *wire.StackHeader
	data unsafe.Pointer
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Create allocates a stack named name with room for capacity elements.
func Create[T any](tbl *table.Table, seg *segment.Handle, name string, capacity uint64) (*Stack[T], error) {
	if capacity == 0 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "stack capacity must be > 0").
			WithStructureName(name).WithOperation("Create")
	}

	size := elemSize[T]()
	total := wire.StackHeaderSize + uint32(capacity*size)

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.StackHeader)(memref.At(seg.RawBase(), offset))
	hdr.Top = 0
	hdr.Capacity = capacity

	return &Stack[T]{hdr: hdr, data: memref.At(seg.RawBase(), offset+wire.StackHeaderSize)}, nil
}

// Open resolves name in tbl and returns a typed view over its stack.
func Open[T any](tbl *table.Table, seg *segment.Handle, name string) (*Stack[T], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "stack not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.StackHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Stack[T]{hdr: hdr, data: memref.At(seg.RawBase(), entry.Offset+wire.StackHeaderSize)}, nil
}

// Capacity returns the stack's slot count.
func (s *Stack[T]) Capacity() uint64 { return s.hdr.Capacity }

func (s *Stack[T]) slot(i uint64) *T {
	return (*T)(memref.At(s.data, uint32(i*elemSize[T]())))
}

// Push attempts to write v onto the stack. Top is a count of occupied
// slots: [0, top) are occupied, [top, capacity) are free. Returns false
// iff the stack was already at capacity.
func (s *Stack[T]) Push(v T) bool {
	for {
		top := atomic.LoadUint64(&s.hdr.Top)
		if top >= s.hdr.Capacity {
			return false
		}

		if atomic.CompareAndSwapUint64(&s.hdr.Top, top, top+1) {
			*s.slot(top) = v
			return true
		}
	}
}

// Pop attempts to remove and return the top element. Returns (zero, false)
// iff the stack was empty at the moment of its CAS attempt.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	for {
		top := atomic.LoadUint64(&s.hdr.Top)
		if top == 0 {
			return zero, false
		}

		if atomic.CompareAndSwapUint64(&s.hdr.Top, top, top-1) {
			return *s.slot(top - 1), true
		}
	}
}
