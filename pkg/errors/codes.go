package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: shm_open, ftruncate, mmap/munmap, unlink.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Segment-specific error codes cover the lifecycle of the backing shared-memory
// object: creation, mapping, and teardown.
const (
	// ErrorCodeSegmentExists indicates Create was called against a name that
	// already has a live backing object.
	ErrorCodeSegmentExists ErrorCode = "SEGMENT_EXISTS"

	// ErrorCodeSegmentNotFound indicates Open was called against a name with
	// no backing object.
	ErrorCodeSegmentNotFound ErrorCode = "SEGMENT_NOT_FOUND"

	// ErrorCodeSegmentInvalid indicates a mapped segment failed magic or
	// version validation.
	ErrorCodeSegmentInvalid ErrorCode = "SEGMENT_INVALID"

	// ErrorCodePermissionDenied indicates insufficient permissions to open or
	// create the backing shared-memory object.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates ftruncate or the backing tmpfs ran out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"
)

// Table-specific error codes cover the metadata directory's create path.
const (
	// ErrorCodeDuplicateName indicates Add was called with a name already
	// present in the table.
	ErrorCodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// ErrorCodeNameTooLong indicates a name exceeds the 31-byte semantic limit.
	ErrorCodeNameTooLong ErrorCode = "NAME_TOO_LONG"

	// ErrorCodeTableFull indicates entry_count has reached max_entries.
	ErrorCodeTableFull ErrorCode = "TABLE_FULL"

	// ErrorCodeOutOfSpace indicates the bump allocator would exceed segment size.
	ErrorCodeOutOfSpace ErrorCode = "OUT_OF_SPACE"
)

// Structure-specific error codes cover operations on the data structures and
// synchronization primitives allocated inside a segment.
const (
	// ErrorCodeOutOfBounds indicates an array index >= capacity.
	ErrorCodeOutOfBounds ErrorCode = "OUT_OF_BOUNDS"

	// ErrorCodeStructureNotFound indicates a name wasn't present in the table
	// when opening a typed view.
	ErrorCodeStructureNotFound ErrorCode = "STRUCTURE_NOT_FOUND"

	// ErrorCodeSizeMismatch indicates the opener's declared element size is
	// inconsistent with the structure's recorded byte size. This is a
	// best-effort local sanity check, not part of the wire contract.
	ErrorCodeSizeMismatch ErrorCode = "SIZE_MISMATCH"

	// ErrorCodeTimeout indicates a wait_timeout call expired before its
	// condition was observed.
	ErrorCodeTimeout ErrorCode = "TIMEOUT"
)
