package pool

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/pkg/logger"
	"github.com/iamNilotpal/zeroipc/pkg/metrics"
	"github.com/iamNilotpal/zeroipc/pkg/options"
)

func newTestHandles(t *testing.T) (*segment.Handle, *table.Table) {
	t.Helper()

	name := fmt.Sprintf("zeroipc-pool-test-%s-%d", t.Name(), os.Getpid())
	opts := options.Apply(options.WithSize(64 * 1024))

	seg, err := segment.Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = seg.Close()
		_ = segment.Destroy(name)
	})

	return seg, table.New(seg, opts.MaxEntries, logger.Noop())
}

type connection struct {
	ID int64
}

func TestPoolAcquireReleaseCycle(t *testing.T) {
	seg, tbl := newTestHandles(t)

	p, err := Create[connection](tbl, seg, "conns", 2)
	require.NoError(t, err)
	require.EqualValues(t, 0, p.Allocated())

	idx1, elem1, ok := p.Acquire()
	require.True(t, ok)
	elem1.ID = 100

	idx2, elem2, ok := p.Acquire()
	require.True(t, ok)
	elem2.ID = 200
	require.NotEqual(t, idx1, idx2)
	require.EqualValues(t, 2, p.Allocated())

	_, _, ok = p.Acquire()
	require.False(t, ok, "pool of capacity 2 is exhausted after two acquires")

	p.Release(idx1)
	require.EqualValues(t, 1, p.Allocated())

	idx3, elem3, ok := p.Acquire()
	require.True(t, ok)
	require.Equal(t, idx1, idx3, "released slot is reused by the next acquire")
	require.EqualValues(t, 100, elem3.ID, "Release does not clear element memory; Acquire returns it as-is")
}

func TestPoolConcurrentCyclingKeepsFreeListConsistent(t *testing.T) {
	seg, tbl := newTestHandles(t)

	p, err := Create[connection](tbl, seg, "conns", 4)
	require.NoError(t, err)

	// Hammer acquire/release from several goroutines so released indices
	// are re-acquired while other acquires are mid-CAS, the interleaving
	// the tagged free-list head exists for.
	var wg sync.WaitGroup
	var held [4]atomic.Int32
	var doubleHands atomic.Int32
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 5000; n++ {
				idx, _, ok := p.Acquire()
				if !ok {
					continue
				}
				if held[idx].Add(1) != 1 {
					doubleHands.Add(1)
				}
				held[idx].Add(-1)
				p.Release(idx)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, doubleHands.Load(), "a slot was handed to two holders at once")
	require.EqualValues(t, 0, p.Allocated())

	// Every slot must be acquirable exactly once afterwards.
	seen := map[uint32]bool{}
	for i := 0; i < 4; i++ {
		idx, _, ok := p.Acquire()
		require.True(t, ok)
		require.False(t, seen[idx], "slot %d appeared twice on the free list", idx)
		seen[idx] = true
	}
	_, _, ok := p.Acquire()
	require.False(t, ok)
}
