// Package hashmap implements an open-addressed, linear-probing hash map:
// a fixed bucket_count decided at create time, no rehashing, and FNV-1a
// as the wire-mandated hash function every participant, in any language,
// must agree on.
//
// Each bucket is (state, key, value). Key and value live at fixed offsets
// within the bucket, both 8-byte aligned, matching the alignment
// discipline the rest of the wire format uses. K is constrained to
// comparable so Go equality works across the raw byte view; in practice K
// should be a fixed-size scalar or plain struct, since a
// pointer-containing K would make the byte hash meaningless across
// processes.
package hashmap

import (
	"hash/fnv"
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Map is a typed view over an open-addressed hash map's header and bucket
// array.
type Map[K comparable, V any] struct {
	hdr         *wire.MapHeader
	buckets     unsafe.Pointer
	keyOff      uintptr
	valOff      uintptr
	stride      uintptr
	bucketCount uint64
}

func alignUp8(n uintptr) uintptr { return (n + 7) &^ 7 }

func layout[K comparable, V any]() (keyOff, valOff, stride uintptr) {
	var k K
	var v V
	keyOff = alignUp8(1)
	valOff = keyOff + alignUp8(unsafe.Sizeof(k))
	stride = alignUp8(valOff + unsafe.Sizeof(v))
	return
}

// Create allocates a map named name with bucketCount buckets.
func Create[K comparable, V any](tbl *table.Table, seg *segment.Handle, name string, bucketCount uint64) (*Map[K, V], error) {
	if bucketCount == 0 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "bucket_count must be > 0").
			WithStructureName(name).WithOperation("Create")
	}

	keyOff, valOff, stride := layout[K, V]()
	total := wire.MapHeaderSize + uint32(bucketCount*uint64(stride))

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.MapHeader)(memref.At(seg.RawBase(), offset))
	hdr.BucketCount = bucketCount
	hdr.Size = 0

	return &Map[K, V]{
		hdr:         hdr,
		buckets:     memref.At(seg.RawBase(), offset+wire.MapHeaderSize),
		keyOff:      keyOff,
		valOff:      valOff,
		stride:      stride,
		bucketCount: bucketCount,
	}, nil
}

// Open resolves name in tbl and returns a typed view over its map.
func Open[K comparable, V any](tbl *table.Table, seg *segment.Handle, name string) (*Map[K, V], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "map not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.MapHeader)(memref.At(seg.RawBase(), entry.Offset))
	keyOff, valOff, stride := layout[K, V]()

	return &Map[K, V]{
		hdr:         hdr,
		buckets:     memref.At(seg.RawBase(), entry.Offset+wire.MapHeaderSize),
		keyOff:      keyOff,
		valOff:      valOff,
		stride:      stride,
		bucketCount: hdr.BucketCount,
	}, nil
}

func (m *Map[K, V]) statePtr(i uint64) *uint32 {
	return (*uint32)(memref.At(m.buckets, uint32(uintptr(i)*m.stride)))
}

func (m *Map[K, V]) keyPtr(i uint64) *K {
	return (*K)(memref.At(m.buckets, uint32(uintptr(i)*m.stride+m.keyOff)))
}

func (m *Map[K, V]) valPtr(i uint64) *V {
	return (*V)(memref.At(m.buckets, uint32(uintptr(i)*m.stride+m.valOff)))
}

// hashKey computes FNV-1a over K's raw byte representation, the hash
// every participant on the segment must use.
func hashKey[K comparable](k K) uint64 {
	h := fnv.New64a()
	b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k))
	_, _ = h.Write(b)
	return h.Sum64()
}

// Size returns the map's current live entry count.
func (m *Map[K, V]) Size() uint64 { return atomic.LoadUint64(&m.hdr.Size) }

// Insert probes from hash(k) mod bucket_count, overwriting an existing
// matching key or claiming the first EMPTY/TOMBSTONE bucket it finds.
// Returns false if the full bucket_count was probed without placement.
func (m *Map[K, V]) Insert(k K, v V) bool {
	start := hashKey(k) % m.bucketCount

	for i := uint64(0); i < m.bucketCount; i++ {
		idx := (start + i) % m.bucketCount
		statePtr := m.statePtr(idx)

		state := atomic.LoadUint32(statePtr)
		if state == uint32(wire.BucketOccupied) && *m.keyPtr(idx) == k {
			*m.valPtr(idx) = v
			return true
		}

		if state == uint32(wire.BucketEmpty) || state == uint32(wire.BucketTombstone) {
			if atomic.CompareAndSwapUint32(statePtr, state, uint32(wire.BucketOccupied)) {
				*m.keyPtr(idx) = k
				*m.valPtr(idx) = v
				// Erase decremented size when it laid this tombstone, so
				// claiming either an empty or a tombstoned bucket adds a
				// live key.
				atomic.AddUint64(&m.hdr.Size, 1)
				return true
			}
			// Lost the CAS race; re-examine the same bucket next
			// iteration, it may now hold a matching key.
			i--
			continue
		}
	}
	return false
}

// Find probes from hash(k) and returns the matching value, stopping at
// the first EMPTY bucket. TOMBSTONE buckets are probed past.
func (m *Map[K, V]) Find(k K) (V, bool) {
	var zero V
	start := hashKey(k) % m.bucketCount

	for i := uint64(0); i < m.bucketCount; i++ {
		idx := (start + i) % m.bucketCount
		state := atomic.LoadUint32(m.statePtr(idx))

		switch state {
		case uint32(wire.BucketEmpty):
			return zero, false
		case uint32(wire.BucketOccupied):
			if *m.keyPtr(idx) == k {
				return *m.valPtr(idx), true
			}
		}
	}
	return zero, false
}

// Erase probes from hash(k) and transitions a matching OCCUPIED bucket to
// TOMBSTONE. Tombstones are never reclaimed; a probe crossing one must
// not terminate early.
func (m *Map[K, V]) Erase(k K) bool {
	start := hashKey(k) % m.bucketCount

	for i := uint64(0); i < m.bucketCount; i++ {
		idx := (start + i) % m.bucketCount
		statePtr := m.statePtr(idx)
		state := atomic.LoadUint32(statePtr)

		switch state {
		case uint32(wire.BucketEmpty):
			return false
		case uint32(wire.BucketOccupied):
			if *m.keyPtr(idx) == k {
				if atomic.CompareAndSwapUint32(statePtr, state, uint32(wire.BucketTombstone)) {
					atomic.AddUint64(&m.hdr.Size, ^uint64(0))
					return true
				}
				return false
			}
		}
	}
	return false
}
