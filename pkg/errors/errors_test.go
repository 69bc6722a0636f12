package errors

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentErrorWrapsAndCarriesCode(t *testing.T) {
	cause := syscall.ENOENT
	err := NewSegmentError(cause, ErrorCodeSegmentNotFound, "segment not found").
		WithName("counters").WithPath("/dev/shm/counters")

	require.Equal(t, "segment not found", err.Error())
	require.Equal(t, ErrorCodeSegmentNotFound, err.Code())
	require.Equal(t, "counters", err.Name())
	require.Equal(t, "/dev/shm/counters", err.Path())
	require.ErrorIs(t, err, cause)

	require.True(t, IsSegmentError(err))
	require.False(t, IsTableError(err))
	require.False(t, IsStructureError(err))

	got, ok := AsSegmentError(err)
	require.True(t, ok)
	require.Same(t, err, got)
}

func TestGetErrorCodeFallsBackToInternal(t *testing.T) {
	require.Equal(t, ErrorCodeInternal, GetErrorCode(errors.New("plain error")))
	require.Equal(t, ErrorCodeTableFull, GetErrorCode(NewTableError(nil, ErrorCodeTableFull, "table full")))
	require.Equal(t, ErrorCodeOutOfBounds, GetErrorCode(NewStructureError(nil, ErrorCodeOutOfBounds, "index out of bounds")))
}

func TestGetErrorDetailsReturnsEmptyMapWhenAbsent(t *testing.T) {
	details := GetErrorDetails(errors.New("plain error"))
	require.NotNil(t, details)
	require.Empty(t, details)
}

func TestWithDetailPreservesSpecializedType(t *testing.T) {
	err := NewStructureError(nil, ErrorCodeOutOfBounds, "index out of bounds").
		WithDetail("index", 5).WithDetail("capacity", 4)

	details := GetErrorDetails(err)
	require.Equal(t, 5, details["index"])
	require.Equal(t, 4, details["capacity"])
}

func TestClassifyShmOpenError(t *testing.T) {
	existsErr := ClassifyShmOpenError(syscall.EEXIST, "counters", "/dev/shm/counters")
	require.Equal(t, ErrorCodeSegmentExists, GetErrorCode(existsErr))

	notFoundErr := ClassifyShmOpenError(syscall.ENOENT, "counters", "/dev/shm/counters")
	require.Equal(t, ErrorCodeSegmentNotFound, GetErrorCode(notFoundErr))

	permErr := ClassifyShmOpenError(syscall.EACCES, "counters", "/dev/shm/counters")
	require.Equal(t, ErrorCodePermissionDenied, GetErrorCode(permErr))

	genericErr := ClassifyShmOpenError(syscall.EIO, "counters", "/dev/shm/counters")
	require.Equal(t, ErrorCodeIO, GetErrorCode(genericErr))
}

func TestClassifyFtruncateError(t *testing.T) {
	fullErr := ClassifyFtruncateError(syscall.ENOSPC, "counters", "/dev/shm/counters", 4096)
	require.Equal(t, ErrorCodeDiskFull, GetErrorCode(fullErr))

	roErr := ClassifyFtruncateError(syscall.EROFS, "counters", "/dev/shm/counters", 4096)
	require.Equal(t, ErrorCodeIO, GetErrorCode(roErr))
}
