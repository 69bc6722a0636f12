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

// Latch is a typed view over a one-shot latch's header. Unlike Barrier, a
// Latch cannot be reset once it reaches zero.
type Latch struct {
	hdr *wire.LatchHeader
}

// CreateLatch allocates a latch named name starting at count initial.
func CreateLatch(tbl *table.Table, seg *segment.Handle, name string, initial int32) (*Latch, error) {
	offset, err := tbl.Add(name, wire.LatchHeaderSize)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.LatchHeader)(memref.At(seg.RawBase(), offset))
	hdr.Count = initial
	hdr.Initial = initial

	return &Latch{hdr: hdr}, nil
}

// OpenLatch resolves name in tbl and returns a view over its state.
func OpenLatch(tbl *table.Table, seg *segment.Handle, name string) (*Latch, error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "latch not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.LatchHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Latch{hdr: hdr}, nil
}

// CountDown decrements the latch's count by n, saturating at 0 via a
// CAS-retry loop.
func (l *Latch) CountDown(n int32) {
	for {
		c := atomic.LoadInt32(&l.hdr.Count)
		if c == 0 {
			return
		}
		next := c - n
		if next < 0 {
			next = 0
		}
		if atomic.CompareAndSwapInt32(&l.hdr.Count, c, next) {
			return
		}
	}
}

// TryWait reports whether the latch has already reached 0, with a single
// load.
func (l *Latch) TryWait() bool {
	return atomic.LoadInt32(&l.hdr.Count) == 0
}

// Wait spins with backoff until the latch reaches 0.
func (l *Latch) Wait() {
	var b backoff.Backoff
	for !l.TryWait() {
		b.Wait()
	}
}

// WaitTimeout is Wait bounded by timeout, returning false on expiry.
func (l *Latch) WaitTimeout(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	var b backoff.Backoff
	for !l.TryWait() {
		if time.Now().After(deadline) {
			return false
		}
		b.Wait()
	}
	return true
}
