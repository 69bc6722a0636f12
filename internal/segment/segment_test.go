package segment

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zeroipc/internal/wire"
	"github.com/iamNilotpal/zeroipc/pkg/errors"
	"github.com/iamNilotpal/zeroipc/pkg/logger"
	"github.com/iamNilotpal/zeroipc/pkg/metrics"
	"github.com/iamNilotpal/zeroipc/pkg/options"
)

func testName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("zeroipc-segment-test-%s-%d", t.Name(), os.Getpid())
}

func TestCreateOpenRoundTrip(t *testing.T) {
	name := testName(t)
	opts := options.Apply(options.WithSize(8 * 1024))

	h, err := Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)
	require.Equal(t, opts.Size, h.Size())
	require.NoError(t, h.Close())

	opened, err := Open(name, logger.Noop(), metrics.New())
	require.NoError(t, err)
	require.Equal(t, opts.Size, opened.Size())
	require.NoError(t, opened.Close())

	require.NoError(t, Destroy(name))
}

func TestCreateInitializesHeader(t *testing.T) {
	name := testName(t)
	opts := options.Apply(options.WithSize(64*1024), options.WithMaxEntries(16))

	h, err := Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)
	defer func() {
		_ = h.Close()
		_ = Destroy(name)
	}()

	hdr := h.Header()
	require.Equal(t, wire.Magic, hdr.MagicValue)
	require.Equal(t, wire.Version, hdr.VersionNo)
	require.EqualValues(t, 0, hdr.EntryCount)
	require.Equal(t, wire.StructureRegionStart(16), hdr.NextOffset)
}

func TestCreateExistingNameFails(t *testing.T) {
	name := testName(t)
	opts := options.Apply(options.WithSize(8 * 1024))

	h, err := Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)
	defer func() {
		_ = h.Close()
		_ = Destroy(name)
	}()

	_, err = Create(name, opts, logger.Noop(), metrics.New())
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeSegmentExists, errors.GetErrorCode(err))
}

func TestOpenNonexistentFails(t *testing.T) {
	_, err := Open(testName(t), logger.Noop(), metrics.New())
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeSegmentNotFound, errors.GetErrorCode(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	name := testName(t)
	opts := options.Apply(options.WithSize(8 * 1024))

	h, err := Create(name, opts, logger.Noop(), metrics.New())
	require.NoError(t, err)
	defer func() { _ = Destroy(name) }()

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}
