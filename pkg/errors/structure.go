package errors

// StructureError is a specialized error type for failures in operations on
// the data structures and synchronization primitives allocated inside a
// segment: invalid create parameters, structures missing from the table
// on open, array bounds checks, and element-size mismatches on open.
// Timeouts on semaphore/barrier/latch waits are reported as a false
// return value, not as a StructureError.
type StructureError struct {
	*baseError

	structureName string // Table name of the structure involved.
	operation     string // Operation being performed, e.g. "Get", "Open", "Create".
}

// NewStructureError creates a new structure-specific error.
func NewStructureError(err error, code ErrorCode, msg string) *StructureError {
	return &StructureError{baseError: NewBaseError(err, code, msg)}
}

// WithStructureName records which structure was involved in the error.
func (xe *StructureError) WithStructureName(name string) *StructureError {
	xe.structureName = name
	return xe
}

// WithOperation records which operation was being performed.
func (xe *StructureError) WithOperation(op string) *StructureError {
	xe.operation = op
	return xe
}

// WithDetail adds contextual information while preserving the StructureError type.
func (xe *StructureError) WithDetail(key string, value any) *StructureError {
	xe.baseError.WithDetail(key, value)
	return xe
}

// StructureName returns the structure name involved in the error.
func (xe *StructureError) StructureName() string {
	return xe.structureName
}

// Operation returns the operation being performed when the error occurred.
func (xe *StructureError) Operation() string {
	return xe.operation
}
