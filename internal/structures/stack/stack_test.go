package stack

import (
	"fmt"
	"os"
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

	name := fmt.Sprintf("zeroipc-stack-test-%s-%d", t.Name(), os.Getpid())
	opts := options.Apply(options.WithSize(64 * 1024))

	seg, err := segment.Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = seg.Close()
		_ = segment.Destroy(name)
	})

	return seg, table.New(seg, opts.MaxEntries, logger.Noop())
}

func TestStackPushPopLIFO(t *testing.T) {
	seg, tbl := newTestHandles(t)

	s, err := Create[int](tbl, seg, "undo", 8)
	require.NoError(t, err)

	require.True(t, s.Push(1))
	require.True(t, s.Push(2))
	require.True(t, s.Push(3))

	v, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, 3, v)

	v, ok = s.Pop()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestStackEmptyPop(t *testing.T) {
	seg, tbl := newTestHandles(t)

	s, err := Create[int](tbl, seg, "undo", 4)
	require.NoError(t, err)

	_, ok := s.Pop()
	require.False(t, ok)
}

func TestStackConcurrentPushPopConserved(t *testing.T) {
	seg, tbl := newTestHandles(t)

	s, err := Create[int](tbl, seg, "undo", 512)
	require.NoError(t, err)

	const n = 2000
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			for !s.Push(i) {
			}
		}
		close(done)
	}()

	popped := 0
	for popped < n {
		if _, ok := s.Pop(); ok {
			popped++
		}
	}
	<-done

	_, ok := s.Pop()
	require.False(t, ok, "the stack is empty after as many pops as pushes")
}

func TestStackFull(t *testing.T) {
	seg, tbl := newTestHandles(t)

	s, err := Create[int](tbl, seg, "undo", 2)
	require.NoError(t, err)

	require.True(t, s.Push(1))
	require.True(t, s.Push(2))
	require.False(t, s.Push(3))
}
