// Package sync implements the three spin-based cross-process coordination
// primitives: counting semaphore, reusable barrier, one-shot latch. None
// of these block on OS primitives; every wait is a poll loop using
// internal/backoff's exponential delay, since shared memory offers no
// portable cross-process futex.
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

// Semaphore is a typed view over a counting semaphore's header.
type Semaphore struct {
	hdr *wire.SemaphoreHeader
}

// CreateSemaphore allocates a semaphore named name with the given initial
// count and maxCount (0 means unbounded).
func CreateSemaphore(tbl *table.Table, seg *segment.Handle, name string, initial, maxCount int32) (*Semaphore, error) {
	offset, err := tbl.Add(name, wire.SemaphoreHeaderSize)
	if err != nil {
		return nil, err
	}

	hdr := (*wire.SemaphoreHeader)(memref.At(seg.RawBase(), offset))
	hdr.Count = initial
	hdr.Waiting = 0
	hdr.MaxCount = maxCount

	return &Semaphore{hdr: hdr}, nil
}

// OpenSemaphore resolves name in tbl and returns a view over its state.
func OpenSemaphore(tbl *table.Table, seg *segment.Handle, name string) (*Semaphore, error) {
	entry, ok := tbl.Find(name)
	if !ok {
		return nil, zerr.NewStructureError(nil, zerr.ErrorCodeStructureNotFound, "semaphore not found").
			WithStructureName(name).WithOperation("Open")
	}
	hdr := (*wire.SemaphoreHeader)(memref.At(seg.RawBase(), entry.Offset))
	return &Semaphore{hdr: hdr}, nil
}

// Count returns the current available count.
func (s *Semaphore) Count() int32 { return atomic.LoadInt32(&s.hdr.Count) }

// TryAcquire makes a single CAS attempt to decrement count, returning
// whether it succeeded.
func (s *Semaphore) TryAcquire() bool {
	c := atomic.LoadInt32(&s.hdr.Count)
	if c == 0 {
		return false
	}
	return atomic.CompareAndSwapInt32(&s.hdr.Count, c, c-1)
}

// Acquire spins with backoff until it can claim a permit.
func (s *Semaphore) Acquire() {
	atomic.AddInt32(&s.hdr.Waiting, 1)
	defer atomic.AddInt32(&s.hdr.Waiting, -1)

	var b backoff.Backoff
	for {
		if s.TryAcquire() {
			return
		}
		b.Wait()
	}
}

// AcquireTimeout spins with backoff until it can claim a permit or timeout
// elapses, returning false on expiry.
func (s *Semaphore) AcquireTimeout(timeout time.Duration) bool {
	atomic.AddInt32(&s.hdr.Waiting, 1)
	defer atomic.AddInt32(&s.hdr.Waiting, -1)

	deadline := time.Now().Add(timeout)
	var b backoff.Backoff
	for {
		if s.TryAcquire() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		b.Wait()
	}
}

// Release increments count, clamping by CAS-retry against MaxCount when
// it is non-zero.
func (s *Semaphore) Release() {
	for {
		c := atomic.LoadInt32(&s.hdr.Count)
		next := c + 1
		if s.hdr.MaxCount > 0 && next > s.hdr.MaxCount {
			next = s.hdr.MaxCount
		}
		if atomic.CompareAndSwapInt32(&s.hdr.Count, c, next) {
			return
		}
	}
}
