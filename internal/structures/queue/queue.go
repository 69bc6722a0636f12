// Package queue implements a lock-free MPMC ring queue: two atomic
// indices modulo capacity, one slot permanently reserved to distinguish
// empty from full.
//
// Go's sync/atomic does not expose separate relaxed/acquire/release memory
// orders the way C++'s <atomic> does; every atomic.Load/Store/CAS call is
// sequentially consistent, which is strictly stronger than the
// acquire/release pairing the wire protocol needs. Atomic operations are
// used even where a relaxed access would suffice, since Go gives us no
// weaker primitive to reach for.
package queue

import (
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Queue is a typed view over an MPMC ring queue's header and payload.
type Queue[T any] struct {
	hdr  *wire.QueueHeader
	data unsafe.Pointer
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Create allocates a queue named name with the given capacity, which must
// be >= 2 since one slot is always reserved.
func Create[T any](tbl *table.Table, seg *segment.Handle, name string, capacity uint64) (*Queue[T], error) {
	if capacity < 2 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "queue capacity must be >= 2").
			WithStructureName(name).WithOperation("Create").WithDetail("capacity", capacity)
	}

	size := elemSize[T]()
	total := wire.QueueHeaderSize + uint32(capacity*size)

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.QueueHeader)(memref.At(seg.RawBase(), offset))
	hdr.Head = 0
	hdr.Tail = 0
	hdr.Capacity = capacity

	return &Queue[T]{hdr: hdr, data: memref.At(seg.RawBase(), offset+wire.QueueHeaderSize)}, nil
}

// Open resolves name in tbl and returns a typed view over its queue.
func Open[T any](tbl *table.Table, seg *segment.Handle, name string) (*Queue[T], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "queue not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.QueueHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Queue[T]{hdr: hdr, data: memref.At(seg.RawBase(), entry.Offset+wire.QueueHeaderSize)}, nil
}

// Capacity returns the queue's slot count, including the one permanently
// reserved slot.
func (q *Queue[T]) Capacity() uint64 { return q.hdr.Capacity }

func (q *Queue[T]) slot(i uint64) *T {
	return (*T)(memref.At(q.data, uint32(i*elemSize[T]())))
}

// Enqueue attempts to push v. Returns false iff the queue was full at the
// moment of its CAS attempt; it never blocks.
func (q *Queue[T]) Enqueue(v T) bool {
	for {
		t := atomic.LoadUint64(&q.hdr.Tail)
		tNext := (t + 1) % q.hdr.Capacity

		if tNext == atomic.LoadUint64(&q.hdr.Head) {
			return false
		}

		if atomic.CompareAndSwapUint64(&q.hdr.Tail, t, tNext) {
			*q.slot(t) = v
			return true
		}
	}
}

// Dequeue attempts to pop the oldest element. Returns (zero, false) iff the
// queue was empty at the moment of its CAS attempt.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	for {
		h := atomic.LoadUint64(&q.hdr.Head)

		if h == atomic.LoadUint64(&q.hdr.Tail) {
			return zero, false
		}

		hNext := (h + 1) % q.hdr.Capacity
		if atomic.CompareAndSwapUint64(&q.hdr.Head, h, hNext) {
			return *q.slot(h), true
		}
	}
}
