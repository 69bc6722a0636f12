// Package ring implements an SPSC ring buffer: a single designated writer
// advances write_pos and a single designated reader advances read_pos,
// with no CAS anywhere. Single-writer/single-reader discipline is the
// caller's contract, not something this package enforces.
//
// The same layout also serves as a byte stream: callers that want a byte
// ring simply instantiate Ring[byte].
package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Ring is a typed view over an SPSC ring buffer's header and payload.
type Ring[T any] struct {
	hdr  *wire.RingHeader
	data unsafe.Pointer
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Create allocates a ring named name with capacity slots. As with the MPMC
// queue, one slot is permanently reserved to distinguish empty from full,
// so capacity must be >= 2.
func Create[T any](tbl *table.Table, seg *segment.Handle, name string, capacity uint64) (*Ring[T], error) {
	if capacity < 2 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "ring capacity must be >= 2").
			WithStructureName(name).WithOperation("Create")
	}

	size := elemSize[T]()
	total := wire.RingHeaderSize + uint32(capacity*size)

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.RingHeader)(memref.At(seg.RawBase(), offset))
	hdr.WritePos = 0
	hdr.ReadPos = 0
	hdr.Capacity = capacity

	return &Ring[T]{hdr: hdr, data: memref.At(seg.RawBase(), offset+wire.RingHeaderSize)}, nil
}

// Open resolves name in tbl and returns a typed view over its ring.
func Open[T any](tbl *table.Table, seg *segment.Handle, name string) (*Ring[T], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "ring not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.RingHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Ring[T]{hdr: hdr, data: memref.At(seg.RawBase(), entry.Offset+wire.RingHeaderSize)}, nil
}

// Capacity returns the ring's slot count, including the one reserved slot.
func (r *Ring[T]) Capacity() uint64 { return r.hdr.Capacity }

func (r *Ring[T]) slot(i uint64) *T {
	return (*T)(memref.At(r.data, uint32(i*elemSize[T]())))
}

// Write attempts to append v. Returns false iff the ring was full. Only the
// single designated writer may call Write.
func (r *Ring[T]) Write(v T) bool {
	w := atomic.LoadUint64(&r.hdr.WritePos)
	rd := atomic.LoadUint64(&r.hdr.ReadPos)

	next := (w + 1) % r.hdr.Capacity
	if next == rd {
		return false
	}

	*r.slot(w) = v
	atomic.StoreUint64(&r.hdr.WritePos, next)
	return true
}

// Read attempts to remove the oldest element. Returns (zero, false) iff the
// ring was empty. Only the single designated reader may call Read.
func (r *Ring[T]) Read() (T, bool) {
	var zero T
	rd := atomic.LoadUint64(&r.hdr.ReadPos)
	w := atomic.LoadUint64(&r.hdr.WritePos)

	if rd == w {
		return zero, false
	}

	v := *r.slot(rd)
	atomic.StoreUint64(&r.hdr.ReadPos, (rd+1)%r.hdr.Capacity)
	return v, true
}

// WriteBytes appends as many bytes of p as fit without overrunning the
// reader, for the byte-stream mode; only meaningful when T is byte. It
// returns the number of bytes actually written.
func (r *Ring[T]) WriteBytes(p []byte) int {
	n := 0
	for n < len(p) {
		if !r.Write(any(p[n]).(T)) {
			break
		}
		n++
	}
	return n
}
