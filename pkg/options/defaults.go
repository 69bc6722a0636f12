package options

const (
	// MinSegmentSize is the smallest segment this module will create: large
	// enough for a default-size table plus a handful of small structures.
	MinSegmentSize uint32 = 8 * 1024

	// MaxSegmentSize bounds segment creation to a sane upper limit. It
	// exists to catch obvious misconfiguration (e.g. an accidental units
	// mistake) before an ftruncate call that would otherwise silently eat
	// the host's memory.
	MaxSegmentSize uint32 = 1 * 1024 * 1024 * 1024

	// DefaultSegmentSize is used when WithSize is not supplied.
	DefaultSegmentSize uint32 = 1 * 1024 * 1024

	// DefaultMaxEntries mirrors wire.DefaultMaxEntries; duplicated here
	// rather than imported so pkg/options carries no internal/ imports.
	DefaultMaxEntries uint32 = 128
)

// NewDefaultOptions returns the baseline Options every Create/Open call
// starts from before functional overrides are applied.
func NewDefaultOptions() Options {
	return Options{
		Size:       DefaultSegmentSize,
		MaxEntries: DefaultMaxEntries,
	}
}
