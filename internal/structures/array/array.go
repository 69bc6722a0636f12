// Package array implements a plain contiguous typed region: a capacity
// header followed by capacity*elem_size bytes. Element type T is a
// per-opener contract; the table only ever stores the total byte size,
// never a type tag.
package array

import (
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Array is a typed view over an array structure's payload. T must be a
// fixed-size value type with no pointers, slices, maps, or strings:
// native pointers are meaningless across processes and a variable-size T
// would make elem_size undefined.
type Array[T any] struct {
	capacity uint64
	data     unsafe.Pointer
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Create allocates a new array structure named name with room for
// capacity elements of T, and registers it in tbl.
func Create[T any](tbl *table.Table, seg *segment.Handle, name string, capacity uint64) (*Array[T], error) {
	size := elemSize[T]()
	total := wire.ArrayHeaderSize + uint32(capacity*size)

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.ArrayHeader)(memref.At(seg.RawBase(), offset))
	hdr.Capacity = capacity

	return &Array[T]{
		capacity: capacity,
		data:     memref.At(seg.RawBase(), offset+wire.ArrayHeaderSize),
	}, nil
}

// Open resolves name in tbl and returns a typed view over its payload,
// trusting the caller's choice of T for elem_size.
func Open[T any](tbl *table.Table, seg *segment.Handle, name string) (*Array[T], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "array not found").
			WithStructureName(name).WithOperation("Open")
	}

	hdr := (*wire.ArrayHeader)(memref.At(seg.RawBase(), entry.Offset))

	// Local sanity check only; the table never stores an element type, so
	// this cannot catch an opener whose T merely has the right size.
	if wire.ArrayHeaderSize+uint32(hdr.Capacity*elemSize[T]()) != entry.Size {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeSizeMismatch, "declared element size inconsistent with stored byte size").
			WithStructureName(name).WithOperation("Open").
			WithDetail("elemSize", elemSize[T]()).
			WithDetail("capacity", hdr.Capacity).
			WithDetail("storedSize", entry.Size)
	}

	return &Array[T]{
		capacity: hdr.Capacity,
		data:     memref.At(seg.RawBase(), entry.Offset+wire.ArrayHeaderSize),
	}, nil
}

// Capacity returns the number of elements the array was created to hold.
func (a *Array[T]) Capacity() uint64 { return a.capacity }

func (a *Array[T]) slot(i uint64) *T {
	return (*T)(memref.At(a.data, uint32(i*elemSize[T]())))
}

// Get returns the value at index i. Returns ErrorCodeOutOfBounds if
// i >= Capacity().
func (a *Array[T]) Get(i uint64) (T, error) {
	var zero T
	if i >= a.capacity {
		return zero, zerr.NewStructureError(nil, zerr.ErrorCodeOutOfBounds, "array index out of bounds").
			WithOperation("Get").WithDetail("index", i).WithDetail("capacity", a.capacity)
	}
	return *a.slot(i), nil
}

// Set writes v at index i. Returns ErrorCodeOutOfBounds if i >= Capacity().
// Concurrent writes to distinct indices are race-free; concurrent
// non-atomic writes to the same index are the caller's contract to
// serialize.
func (a *Array[T]) Set(i uint64, v T) error {
	if i >= a.capacity {
		return zerr.NewStructureError(nil, zerr.ErrorCodeOutOfBounds, "array index out of bounds").
			WithOperation("Set").WithDetail("index", i).WithDetail("capacity", a.capacity)
	}
	*a.slot(i) = v
	return nil
}

// AsRaw exposes the payload's base pointer and capacity.
func (a *Array[T]) AsRaw() (unsafe.Pointer, uint64) {
	return a.data, a.capacity
}
