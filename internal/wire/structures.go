package wire

import "unsafe"

// Each structure header below is wire contract: field order, widths, and
// total size are fixed for Version 1. Atomic fields are plain Go
// primitives; atomicity comes from how callers access them (sync/atomic
// over a pointer into the mapped region), not from the Go type. See
// internal/structures for the accessors.

// ArrayHeader precedes a plain array payload.
type ArrayHeader struct {
	Capacity uint64
}

// QueueHeader precedes an MPMC ring queue payload.
type QueueHeader struct {
	Head     uint64
	Tail     uint64
	Capacity uint64
}

// StackHeader precedes a Treiber-style indexed stack payload.
type StackHeader struct {
	Top      uint64
	Capacity uint64
}

// RingHeader precedes an SPSC ring buffer payload.
type RingHeader struct {
	WritePos uint64
	ReadPos  uint64
	Capacity uint64
}

// MapHeader precedes a hash map bucket array.
type MapHeader struct {
	BucketCount uint64
	Size        uint64
}

// SetHeader precedes a hash set bucket array.
type SetHeader struct {
	BucketCount uint64
	Size        uint64
}

// PoolHeader precedes an object pool's slot array. FreeHead is logically a
// tagged (index, generation) pair packed into 64 bits: low 32 bits are the
// slot index (or PoolSentinel), high 32 bits are a generation tag
// incremented on every successful pop. The tag is what keeps a concurrent
// acquire/release/re-acquire cycle from ABA-corrupting the free list.
type PoolHeader struct {
	FreeHead  uint64
	Capacity  uint32
	Allocated uint32
}

// PoolSentinel marks "no free slot" in the low 32 bits of FreeHead.
const PoolSentinel uint32 = 0xFFFFFFFF

// SemaphoreHeader is the fixed-layout state of a counting semaphore.
type SemaphoreHeader struct {
	Count    int32
	Waiting  int32
	MaxCount int32
	_        int32
}

// BarrierHeader is the fixed-layout state of a reusable barrier.
type BarrierHeader struct {
	Arrived    int32
	Generation int32
	N          int32
	_          int32
}

// LatchHeader is the fixed-layout state of a one-shot latch.
type LatchHeader struct {
	Count   int32
	Initial int32
	_       [2]int32
}

// Bucket state values for the hash map/set open-addressing scheme.
const (
	BucketEmpty     uint8 = 0
	BucketOccupied  uint8 = 1
	BucketTombstone uint8 = 2
)

// Sizes of each header, exported for allocation-size arithmetic in the
// structure packages.
const (
	ArrayHeaderSize     = uint32(unsafe.Sizeof(ArrayHeader{}))
	QueueHeaderSize     = uint32(unsafe.Sizeof(QueueHeader{}))
	StackHeaderSize     = uint32(unsafe.Sizeof(StackHeader{}))
	RingHeaderSize      = uint32(unsafe.Sizeof(RingHeader{}))
	MapHeaderSize       = uint32(unsafe.Sizeof(MapHeader{}))
	SetHeaderSize       = uint32(unsafe.Sizeof(SetHeader{}))
	PoolHeaderSize      = uint32(unsafe.Sizeof(PoolHeader{}))
	SemaphoreHeaderSize = uint32(unsafe.Sizeof(SemaphoreHeader{}))
	BarrierHeaderSize   = uint32(unsafe.Sizeof(BarrierHeader{}))
	LatchHeaderSize     = uint32(unsafe.Sizeof(LatchHeader{}))
)
