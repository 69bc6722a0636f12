package hashmap

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

	name := fmt.Sprintf("zeroipc-hashmap-test-%s-%d", t.Name(), os.Getpid())
	opts := options.Apply(options.WithSize(64 * 1024))

	seg, err := segment.Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = seg.Close()
		_ = segment.Destroy(name)
	})

	return seg, table.New(seg, opts.MaxEntries, logger.Noop())
}

func TestMapInsertFindErase(t *testing.T) {
	seg, tbl := newTestHandles(t)

	m, err := Create[int64, int64](tbl, seg, "prices", 64)
	require.NoError(t, err)

	require.True(t, m.Insert(1, 100))
	require.True(t, m.Insert(2, 200))
	require.EqualValues(t, 2, m.Size())

	v, ok := m.Find(1)
	require.True(t, ok)
	require.EqualValues(t, 100, v)

	require.True(t, m.Insert(1, 150))
	require.EqualValues(t, 2, m.Size(), "overwrite of an existing key must not grow size")

	v, ok = m.Find(1)
	require.True(t, ok)
	require.EqualValues(t, 150, v)

	require.True(t, m.Erase(1))
	_, ok = m.Find(1)
	require.False(t, ok)
	require.EqualValues(t, 1, m.Size())

	require.False(t, m.Erase(1), "erasing an already-erased key returns false")
}

func TestMapChurnReinsertsThroughTombstones(t *testing.T) {
	seg, tbl := newTestHandles(t)

	m, err := Create[uint64, uint64](tbl, seg, "churn", 128)
	require.NoError(t, err)

	for i := uint64(0); i < 100; i++ {
		require.True(t, m.Insert(i, i*2))
	}
	require.EqualValues(t, 100, m.Size())
	for i := uint64(0); i < 100; i++ {
		v, ok := m.Find(i)
		require.True(t, ok)
		require.Equal(t, i*2, v)
	}

	for i := uint64(1); i < 100; i += 2 {
		require.True(t, m.Erase(i))
	}
	require.EqualValues(t, 50, m.Size())
	for i := uint64(0); i < 100; i++ {
		v, ok := m.Find(i)
		if i%2 == 1 {
			require.False(t, ok)
			continue
		}
		require.True(t, ok)
		require.Equal(t, i*2, v)
	}

	for i := uint64(1); i < 100; i += 2 {
		require.True(t, m.Insert(i, i*3), "probing must reuse tombstoned buckets")
	}
	require.EqualValues(t, 100, m.Size())
	for i := uint64(1); i < 100; i += 2 {
		v, ok := m.Find(i)
		require.True(t, ok)
		require.Equal(t, i*3, v)
	}
}

func TestMapFindMissing(t *testing.T) {
	seg, tbl := newTestHandles(t)

	m, err := Create[int64, int64](tbl, seg, "prices", 8)
	require.NoError(t, err)

	_, ok := m.Find(999)
	require.False(t, ok)
}

func TestMapOpenSeesCreatorWrites(t *testing.T) {
	seg, tbl := newTestHandles(t)

	m, err := Create[int64, int64](tbl, seg, "prices", 8)
	require.NoError(t, err)
	require.True(t, m.Insert(5, 55))

	opened, err := Open[int64, int64](tbl, seg, "prices")
	require.NoError(t, err)

	v, ok := opened.Find(5)
	require.True(t, ok)
	require.EqualValues(t, 55, v)
}
