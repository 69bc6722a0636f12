package errors

// TableError is a specialized error type for failures in the metadata
// table's create path: duplicate names, names too long, a full table, or
// an out-of-space bump allocation.
type TableError struct {
	*baseError

	entryName  string // Name being added or looked up when the error occurred.
	nextOffset uint32 // Bump cursor value at the time of the error.
}

// NewTableError creates a new table-specific error.
func NewTableError(err error, code ErrorCode, msg string) *TableError {
	return &TableError{baseError: NewBaseError(err, code, msg)}
}

// WithEntryName records which entry name was involved in the error.
func (te *TableError) WithEntryName(name string) *TableError {
	te.entryName = name
	return te
}

// WithNextOffset records the bump cursor value at the time of the error.
func (te *TableError) WithNextOffset(offset uint32) *TableError {
	te.nextOffset = offset
	return te
}

// WithDetail adds contextual information while preserving the TableError type.
func (te *TableError) WithDetail(key string, value any) *TableError {
	te.baseError.WithDetail(key, value)
	return te
}

// EntryName returns the table entry name involved in the error.
func (te *TableError) EntryName() string {
	return te.entryName
}

// NextOffset returns the bump cursor value recorded at the time of the error.
func (te *TableError) NextOffset() uint32 {
	return te.nextOffset
}
