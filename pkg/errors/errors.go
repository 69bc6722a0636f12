// Package errors provides the structured error taxonomy used across every
// ZeroIPC subsystem: the segment handle, the metadata table, and the data
// structures/synchronization primitives built on top of them.
//
// Rather than returning bare errors.New(...) strings, each subsystem builds
// a specialized error type (SegmentError, TableError, StructureError) on top
// of a shared baseError. Every specialized type carries an ErrorCode for
// programmatic handling plus free-form WithDetail(...) context, and supports
// errors.Is/errors.As through Unwrap.
//
// Lifecycle operations (Create, Open, Add) return these errors directly
// and do not mutate state on failure. Hot-path structure operations never
// return one of these; they signal failure out-of-band with a bool or a
// zero value.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsSegmentError checks if the given error is a SegmentError or contains one
// in its error chain.
func IsSegmentError(err error) bool {
	var se *SegmentError
	return stdErrors.As(err, &se)
}

// IsTableError checks if the given error is a TableError or contains one in
// its error chain.
func IsTableError(err error) bool {
	var te *TableError
	return stdErrors.As(err, &te)
}

// IsStructureError checks if the given error is a StructureError or contains
// one in its error chain.
func IsStructureError(err error) bool {
	var xe *StructureError
	return stdErrors.As(err, &xe)
}

// AsSegmentError extracts a SegmentError from an error chain, if present.
func AsSegmentError(err error) (*SegmentError, bool) {
	var se *SegmentError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsTableError extracts a TableError from an error chain, if present.
func AsTableError(err error) (*TableError, bool) {
	var te *TableError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// AsStructureError extracts a StructureError from an error chain, if present.
func AsStructureError(err error) (*StructureError, bool) {
	var xe *StructureError
	if stdErrors.As(err, &xe) {
		return xe, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or
// returns ErrorCodeInternal for errors that don't have specific codes.
func GetErrorCode(err error) ErrorCode {
	if se, ok := AsSegmentError(err); ok {
		return se.Code()
	}
	if te, ok := AsTableError(err); ok {
		return te.Code()
	}
	if xe, ok := AsStructureError(err); ok {
		return xe.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports
// them, returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if se, ok := AsSegmentError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}
	if te, ok := AsTableError(err); ok {
		if details := te.Details(); details != nil {
			return details
		}
	}
	if xe, ok := AsStructureError(err); ok {
		if details := xe.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// ClassifyShmOpenError analyzes a failure from the backing shared-memory
// object's open/create call and returns a SegmentError carrying the specific
// error code and actionable detail, rather than a generic I/O error.
func ClassifyShmOpenError(err error, name, path string) error {
	if stdErrors.Is(err, os.ErrExist) || stdErrors.Is(err, syscall.EEXIST) {
		return NewSegmentError(err, ErrorCodeSegmentExists, "segment already exists").
			WithName(name).WithPath(path).WithDetail("operation", "shm_open")
	}
	if stdErrors.Is(err, os.ErrNotExist) || stdErrors.Is(err, syscall.ENOENT) {
		return NewSegmentError(err, ErrorCodeSegmentNotFound, "segment not found").
			WithName(name).WithPath(path).WithDetail("operation", "shm_open")
	}
	if os.IsPermission(err) || stdErrors.Is(err, syscall.EACCES) {
		return NewSegmentError(err, ErrorCodePermissionDenied, "insufficient permissions to open segment").
			WithName(name).WithPath(path).
			WithDetail("operation", "shm_open").
			WithDetail("suggestion", "check /dev/shm permissions or run with elevated privileges")
	}
	return NewSegmentError(err, ErrorCodeIO, "failed to open shared-memory segment").
		WithName(name).WithPath(path).WithDetail("operation", "shm_open")
}

// ClassifyFtruncateError analyzes a failure from sizing the backing object
// and returns a SegmentError with actionable detail.
func ClassifyFtruncateError(err error, name, path string, size uint32) error {
	if errno, ok := asErrno(err); ok {
		switch errno {
		case syscall.ENOSPC:
			return NewSegmentError(err, ErrorCodeDiskFull, "insufficient space to size segment").
				WithName(name).WithPath(path).
				WithDetail("operation", "ftruncate").
				WithDetail("requestedSize", size).
				WithDetail("suggestion", "free space on the shm-backed tmpfs or reduce segment size")
		case syscall.EROFS:
			return NewSegmentError(err, ErrorCodeIO, "cannot size segment on read-only filesystem").
				WithName(name).WithPath(path).WithDetail("operation", "ftruncate")
		}
	}
	return NewSegmentError(err, ErrorCodeIO, "failed to size shared-memory segment").
		WithName(name).WithPath(path).
		WithDetail("operation", "ftruncate").
		WithDetail("requestedSize", size)
}

// ClassifyMmapError analyzes a failure from mapping the backing object into
// the process's address space.
func ClassifyMmapError(err error, name, path string, size uint32) error {
	return NewSegmentError(err, ErrorCodeIO, "failed to map shared-memory segment").
		WithName(name).WithPath(path).
		WithDetail("operation", "mmap").
		WithDetail("size", size)
}

func asErrno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if stdErrors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}
