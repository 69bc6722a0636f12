package sync

import (
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/zeroipc/internal/backoff"
	"github.com/iamNilotpal/zeroipc/internal/memref"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
)

// Barrier is a typed view over a reusable barrier's header.
type Barrier struct {
	hdr *wire.BarrierHeader
}

// CreateBarrier allocates a barrier named name for n participants.
func CreateBarrier(tbl *table.Table, seg *segment.Handle, name string, n int32) (*Barrier, error) {
	offset, err := tbl.Add(name, wire.BarrierHeaderSize)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.BarrierHeader)(memref.At(seg.RawBase(), offset))
	hdr.Arrived = 0
	hdr.Generation = 0
	hdr.N = n

	return &Barrier{hdr: hdr}, nil
}

// OpenBarrier resolves name in tbl and returns a view over its state.
func OpenBarrier(tbl *table.Table, seg *segment.Handle, name string) (*Barrier, error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "barrier not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.BarrierHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Barrier{hdr: hdr}, nil
}

// Wait blocks until N participants have all called Wait for the current
// generation. The n-th arrival resets arrived to 0 before advancing
// generation, so no early arrival of the next cycle can observe
// arrived == n for the old one.
func (b *Barrier) Wait() {
	myGen := atomic.LoadInt32(&b.hdr.Generation)
	arrivedNow := atomic.AddInt32(&b.hdr.Arrived, 1)

	if arrivedNow == b.hdr.N {
		atomic.StoreInt32(&b.hdr.Arrived, 0)
		atomic.AddInt32(&b.hdr.Generation, 1)
		return
	}

	var bk backoff.Backoff
	for atomic.LoadInt32(&b.hdr.Generation) == myGen {
		bk.Wait()
	}
}

// WaitTimeout is Wait bounded by timeout. On expiry it decrements arrived
// and returns false. Known race: if the n-th arrival happens during this
// decrement window, both sides can observe an inconsistent count. Callers
// mixing WaitTimeout with a full complement of Wait participants accept
// that window.
func (b *Barrier) WaitTimeout(timeout time.Duration) bool {
	myGen := atomic.LoadInt32(&b.hdr.Generation)
	arrivedNow := atomic.AddInt32(&b.hdr.Arrived, 1)

	if arrivedNow == b.hdr.N {
		atomic.StoreInt32(&b.hdr.Arrived, 0)
		atomic.AddInt32(&b.hdr.Generation, 1)
		return true
	}

	deadline := time.Now().Add(timeout)
	var bk backoff.Backoff
	for atomic.LoadInt32(&b.hdr.Generation) == myGen {
		if time.Now().After(deadline) {
			atomic.AddInt32(&b.hdr.Arrived, -1)
			return false
		}
		bk.Wait()
	}
	return true
}
