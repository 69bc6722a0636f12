package errors

// SegmentError is a specialized error type for failures rooted in the
// lifecycle of the backing shared-memory object: shm_open, ftruncate,
// mmap/munmap, shm_unlink. It embeds baseError to inherit the standard
// error functionality and adds segment-specific location context.
type SegmentError struct {
	*baseError

	name string // Name of the shared-memory segment involved.
	path string // Resolved backing path (e.g. /dev/shm/<name>).
}

// NewSegmentError creates a new segment-specific error.
func NewSegmentError(err error, code ErrorCode, msg string) *SegmentError {
	return &SegmentError{baseError: NewBaseError(err, code, msg)}
}

// WithName records which segment name was involved in the error.
func (se *SegmentError) WithName(name string) *SegmentError {
	se.name = name
	return se
}

// WithPath records the resolved backing path involved in the error.
func (se *SegmentError) WithPath(path string) *SegmentError {
	se.path = path
	return se
}

// WithDetail adds contextual information while preserving the SegmentError type.
func (se *SegmentError) WithDetail(key string, value any) *SegmentError {
	se.baseError.WithDetail(key, value)
	return se
}

// Name returns the segment name involved in the error.
func (se *SegmentError) Name() string {
	return se.name
}

// Path returns the resolved backing path involved in the error.
func (se *SegmentError) Path() string {
	return se.path
}
