// Package hashset implements an open-addressed, linear-probing hash set:
// identical to hashmap's scheme but with no value field in each bucket.
package hashset

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

// Set is a typed view over an open-addressed hash set's header and bucket
// array.
type Set[K comparable] struct {
	hdr         *wire.SetHeader
	buckets     unsafe.Pointer
	keyOff      uintptr
	stride      uintptr
	bucketCount uint64
}

func alignUp8(n uintptr) uintptr { return (n + 7) &^ 7 }

func layout[K comparable]() (keyOff, stride uintptr) {
	var k K
	keyOff = alignUp8(1)
	stride = alignUp8(keyOff + unsafe.Sizeof(k))
	return
}

// Create allocates a set named name with bucketCount buckets.
func Create[K comparable](tbl *table.Table, seg *segment.Handle, name string, bucketCount uint64) (*Set[K], error) {
	if bucketCount == 0 {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeInvalidInput, "bucket_count must be > 0").
			WithStructureName(name).WithOperation("Create")
	}

	keyOff, stride := layout[K]()
	total := wire.SetHeaderSize + uint32(bucketCount*uint64(stride))

	offset, err := tbl.Add(name, total)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.SetHeader)(memref.At(seg.RawBase(), offset))
	hdr.BucketCount = bucketCount
	hdr.Size = 0

	return &Set[K]{
		hdr:         hdr,
		buckets:     memref.At(seg.RawBase(), offset+wire.SetHeaderSize),
		keyOff:      keyOff,
		stride:      stride,
		bucketCount: bucketCount,
	}, nil
}

// Open resolves name in tbl and returns a typed view over its set.
func Open[K comparable](tbl *table.Table, seg *segment.Handle, name string) (*Set[K], error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "set not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.SetHeader)(memref.At(seg.RawBase(), entry.Offset))
	keyOff, stride := layout[K]()

	return &Set[K]{
		hdr:         hdr,
		buckets:     memref.At(seg.RawBase(), entry.Offset+wire.SetHeaderSize),
		keyOff:      keyOff,
		stride:      stride,
		bucketCount: hdr.BucketCount,
	}, nil
}

func (s *Set[K]) statePtr(i uint64) *uint32 {
	return (*uint32)(memref.At(s.buckets, uint32(uintptr(i)*s.stride)))
}

func (s *Set[K]) keyPtr(i uint64) *K {
	return (*K)(memref.At(s.buckets, uint32(uintptr(i)*s.stride+s.keyOff)))
}

func hashKey[K comparable](k K) uint64 {
	h := fnv.New64a()
	b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k))
	_, _ = h.Write(b)
	return h.Sum64()
}

// Size returns the set's current live element count.
func (s *Set[K]) Size() uint64 { return atomic.LoadUint64(&s.hdr.Size) }

// Insert probes from hash(k) mod bucket_count, returning true whether k was
// newly placed or already present. Returns false only if the full
// bucket_count was probed without finding a home.
func (s *Set[K]) Insert(k K) bool {
	start := hashKey(k) % s.bucketCount

	for i := uint64(0); i < s.bucketCount; i++ {
		idx := (start + i) % s.bucketCount
		statePtr := s.statePtr(idx)
		state := atomic.LoadUint32(statePtr)

		if state == uint32(wire.BucketOccupied) && *s.keyPtr(idx) == k {
			return true
		}

		if state == uint32(wire.BucketEmpty) || state == uint32(wire.BucketTombstone) {
			if atomic.CompareAndSwapUint32(statePtr, state, uint32(wire.BucketOccupied)) {
				*s.keyPtr(idx) = k
				// Erase decremented size when it laid this tombstone, so
				// claiming either an empty or a tombstoned bucket adds a
				// live key.
				atomic.AddUint64(&s.hdr.Size, 1)
				return true
			}
			i--
			continue
		}
	}
	return false
}

// Contains reports whether k is present, stopping at the first EMPTY
// bucket.
func (s *Set[K]) Contains(k K) bool {
	start := hashKey(k) % s.bucketCount

	for i := uint64(0); i < s.bucketCount; i++ {
		idx := (start + i) % s.bucketCount
		state := atomic.LoadUint32(s.statePtr(idx))

		switch state {
		case uint32(wire.BucketEmpty):
			return false
		case uint32(wire.BucketOccupied):
			if *s.keyPtr(idx) == k {
				return true
			}
		}
	}
	return false
}

// Erase transitions a matching OCCUPIED bucket to TOMBSTONE.
func (s *Set[K]) Erase(k K) bool {
	start := hashKey(k) % s.bucketCount

	for i := uint64(0); i < s.bucketCount; i++ {
		idx := (start + i) % s.bucketCount
		statePtr := s.statePtr(idx)
		state := atomic.LoadUint32(statePtr)

		switch state {
		case uint32(wire.BucketEmpty):
			return false
		case uint32(wire.BucketOccupied):
			if *s.keyPtr(idx) == k {
				if atomic.CompareAndSwapUint32(statePtr, state, uint32(wire.BucketTombstone)) {
					atomic.AddUint64(&s.hdr.Size, ^uint64(0))
					return true
				}
				return false
			}
		}
	}
	return false
}
