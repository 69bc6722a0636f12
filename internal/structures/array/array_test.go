package array

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/table"
	"github.com/iamNilotpal/zeroipc/pkg/errors"
	"github.com/iamNilotpal/zeroipc/pkg/logger"
	"github.com/iamNilotpal/zeroipc/pkg/metrics"
	"github.com/iamNilotpal/zeroipc/pkg/options"
)

func newTestHandles(t *testing.T) (*segment.Handle, *table.Table) {
	t.Helper()

	name := fmt.Sprintf("zeroipc-array-test-%s-%d", t.Name(), os.Getpid())
	opts := options.Apply(options.WithSize(64 * 1024))

	seg, err := segment.Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = seg.Close()
		_ = segment.Destroy(name)
	})

	return seg, table.New(seg, opts.MaxEntries, logger.Noop())
}

func TestArrayCreateGetSet(t *testing.T) {
	seg, tbl := newTestHandles(t)

	arr, err := Create[int64](tbl, seg, "scores", 16)
	require.NoError(t, err)
	require.EqualValues(t, 16, arr.Capacity())

	require.NoError(t, arr.Set(3, 42))
	v, err := arr.Get(3)
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
}

func TestArrayOutOfBounds(t *testing.T) {
	seg, tbl := newTestHandles(t)

	arr, err := Create[int64](tbl, seg, "scores", 4)
	require.NoError(t, err)

	_, err = arr.Get(4)
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeOutOfBounds, errors.GetErrorCode(err))

	err = arr.Set(100, 1)
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeOutOfBounds, errors.GetErrorCode(err))
}

func TestArrayOpenSeesCreatorWrites(t *testing.T) {
	seg, tbl := newTestHandles(t)

	arr, err := Create[int64](tbl, seg, "scores", 8)
	require.NoError(t, err)
	require.NoError(t, arr.Set(0, 7))

	opened, err := Open[int64](tbl, seg, "scores")
	require.NoError(t, err)

	v, err := opened.Get(0)
	require.NoError(t, err)
	require.EqualValues(t, 7, v)
}

func TestArrayOpenWrongElementSizeFails(t *testing.T) {
	seg, tbl := newTestHandles(t)

	_, err := Create[int64](tbl, seg, "scores", 8)
	require.NoError(t, err)

	_, err = Open[int32](tbl, seg, "scores")
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeSizeMismatch, errors.GetErrorCode(err))
}

func TestArrayOpenMissingFails(t *testing.T) {
	seg, tbl := newTestHandles(t)

	_, err := Open[int64](tbl, seg, "nonexistent")
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeStructureNotFound, errors.GetErrorCode(err))
}
