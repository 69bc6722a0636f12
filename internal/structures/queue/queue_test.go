package queue

import (
	"fmt"
	"os"
	"sync"
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

	name := fmt.Sprintf("zeroipc-queue-test-%s-%d", t.Name(), os.Getpid())
	opts := options.Apply(options.WithSize(64 * 1024))

	seg, err := segment.Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = seg.Close()
		_ = segment.Destroy(name)
	})

	return seg, table.New(seg, opts.MaxEntries, logger.Noop())
}

func TestQueueEnqueueDequeueFIFO(t *testing.T) {
	seg, tbl := newTestHandles(t)

	q, err := Create[int](tbl, seg, "jobs", 4)
	require.NoError(t, err)

	require.True(t, q.Enqueue(1))
	require.True(t, q.Enqueue(2))

	v, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, ok = q.Dequeue()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestQueueFullAndEmpty(t *testing.T) {
	seg, tbl := newTestHandles(t)

	q, err := Create[int](tbl, seg, "jobs", 2)
	require.NoError(t, err)

	require.True(t, q.Enqueue(1))
	require.False(t, q.Enqueue(2), "capacity 2 reserves one slot, so only 1 element fits")

	_, ok := q.Dequeue()
	require.True(t, ok)

	_, ok = q.Dequeue()
	require.False(t, ok)
}

func TestQueueRejectsTinyCapacity(t *testing.T) {
	seg, tbl := newTestHandles(t)

	_, err := Create[int](tbl, seg, "jobs", 1)
	require.Error(t, err)
}

func TestQueueConcurrentProducerConsumer(t *testing.T) {
	seg, tbl := newTestHandles(t)

	q, err := Create[int](tbl, seg, "jobs", 256)
	require.NoError(t, err)

	const n = 1000
	done := make(chan struct{})

	go func() {
		for i := 0; i < n; i++ {
			for !q.Enqueue(i) {
			}
		}
		close(done)
	}()

	seen := 0
	for seen < n {
		if _, ok := q.Dequeue(); ok {
			seen++
		}
	}
	<-done
	require.Equal(t, n, seen)
}

func TestQueueTwoProducersTwoConsumersDrainEverything(t *testing.T) {
	seg, tbl := newTestHandles(t)

	q, err := Create[int64](tbl, seg, "jobs", 1024)
	require.NoError(t, err)

	const perProducer = 10000
	var wg sync.WaitGroup
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < perProducer; i++ {
				for !q.Enqueue(base + i) {
				}
			}
		}(int64(p) * perProducer)
	}

	var mu sync.Mutex
	consumed := make(map[int64]int, 2*perProducer)
	for c := 0; c < 2; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for drained := 0; drained < perProducer; {
				v, ok := q.Dequeue()
				if !ok {
					continue
				}
				drained++
				mu.Lock()
				consumed[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	_, ok := q.Dequeue()
	require.False(t, ok, "queue must be empty after both consumers drain")
	require.Len(t, consumed, 2*perProducer)
	for v, count := range consumed {
		require.Equal(t, 1, count, "value %d consumed more than once", v)
	}
}
