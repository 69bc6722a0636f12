// Package pool implements a free-list object pool: capacity fixed slots,
// each carrying a next_free index, threaded into a singly-linked free
// list. The head is packed into a single 64-bit atomic, low 32 bits the
// slot index (PoolSentinel for empty) and high 32 bits a generation tag
// bumped on every successful acquire, so a concurrent
// acquire/release/re-acquire cycle cannot ABA-corrupt the list.
package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// slotHeader precedes each element in the pool's payload: the next-free
// index threaded into the free list when the slot is unallocated.
type slotHeader struct {
	NextFree uint32
	_        uint32 // padding to keep element data 8-byte aligned
}

// Pool is a typed view over an object pool's header and slot array.
type Pool[T any] struct {
	hdr      *wire.PoolHeader
	slots    unsafe.Pointer
	stride   uintptr
	elemOff  uintptr
	capacity uint32
}

func alignUp8(n uintptr) uintptr { return (n + 7) &^ 7 }

func layout[T any]() (elemOff, stride uintptr) {
	var t T
	elemOff = alignUp8(unsafe.Sizeof(slotHeader{}))
	stride = alignUp8(elemOff + unsafe.Sizeof(t))
	return
}

func pack(index, generation uint32) uint64 {
	return uint64(generation)<<32 | uint64(index)
}

func unpack(tagged uint64) (index, generation uint32) {
	return uint32(tagged), uint32(tagged >> 32)
}

// Create allocates a pool named name with capacity slots, threading the
// free list so slot i points to slot i+1, the last slot points to the
// sentinel, and free_head starts at slot 0 with generation 0.
func Create[T any](tbl *table.Table, seg *segment.Handle, name string, capacity uint32) (*Pool[T], error) {
	if capacity == 0 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "pool capacity must be > 0").
			WithStructureName(name).WithOperation("Create")
	}

	elemOff, stride := layout[T]()
	total := wire.PoolHeaderSize + uint32(uint64(capacity)*uint64(stride))

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.PoolHeader)(memref.At(seg.RawBase(), offset))
	hdr.Capacity = capacity
	hdr.Allocated = 0
	hdr.FreeHead = pack(0, 0)

	p := &Pool[T]{
		hdr:      hdr,
		slots:    memref.At(seg.RawBase(), offset+wire.PoolHeaderSize),
		stride:   stride,
		elemOff:  elemOff,
		capacity: capacity,
	}

	for i := uint32(0); i < capacity; i++ {
		next := i + 1
		if next == capacity {
			next = wire.PoolSentinel
		}
		p.slotHeader(i).NextFree = next
	}

	return p, nil
}

// Open resolves name in tbl and returns a typed view over its pool.
func Open[T any](tbl *table.Table, seg *segment.Handle, name string) (*Pool[T], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "pool not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.PoolHeader)(memref.At(seg.RawBase(), entry.Offset))
	elemOff, stride := layout[T]()

	return &Pool[T]{
		hdr:      hdr,
		slots:    memref.At(seg.RawBase(), entry.Offset+wire.PoolHeaderSize),
		stride:   stride,
		elemOff:  elemOff,
		capacity: hdr.Capacity,
	}, nil
}

func (p *Pool[T]) slotHeader(i uint32) *slotHeader {
	return (*slotHeader)(memref.At(p.slots, uint32(uintptr(i)*p.stride)))
}

func (p *Pool[T]) elemPtr(i uint32) *T {
	return (*T)(memref.At(p.slots, uint32(uintptr(i)*p.stride+p.elemOff)))
}

// Capacity returns the pool's total slot count.
func (p *Pool[T]) Capacity() uint32 { return p.capacity }

// Allocated returns the current number of acquired-but-not-released slots.
func (p *Pool[T]) Allocated() uint32 { return atomic.LoadUint32(&p.hdr.Allocated) }

// Acquire pops a slot off the free list. Returns (index, pointer, true), or
// (0, nil, false) if the pool is exhausted.
func (p *Pool[T]) Acquire() (uint32, *T, bool) {
	for {
		tagged := atomic.LoadUint64(&p.hdr.FreeHead)
		index, generation := unpack(tagged)

		if index == wire.PoolSentinel {
			return 0, nil, false
		}

		next := p.slotHeader(index).NextFree
		newTagged := pack(next, generation+1)

		if atomic.CompareAndSwapUint64(&p.hdr.FreeHead, tagged, newTagged) {
			atomic.AddUint32(&p.hdr.Allocated, 1)
			return index, p.elemPtr(index), true
		}
	}
}

// Release returns slot index to the free list. Callers must not reuse the
// element pointer returned by Acquire after calling Release.
func (p *Pool[T]) Release(index uint32) {
	for {
		tagged := atomic.LoadUint64(&p.hdr.FreeHead)
		oldIndex, generation := unpack(tagged)

		p.slotHeader(index).NextFree = oldIndex
		newTagged := pack(index, generation)

		if atomic.CompareAndSwapUint64(&p.hdr.FreeHead, tagged, newTagged) {
			atomic.AddUint32(&p.hdr.Allocated, ^uint32(0))
			return
		}
	}
}
