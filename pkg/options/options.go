// Package options provides data structures and functions for configuring a
// ZeroIPC segment: its size, table capacity, and optional metrics
// registration. It follows the functional-options pattern: a zero-value-safe
// Options struct, a NewDefaultOptions baseline, and a set of OptionFunc
// constructors that override individual fields.
package options

import "github.com/prometheus/client_golang/prometheus"

// Options configures a segment Create call. Open calls only need a name;
// everything else is read back from the segment itself.
type Options struct {
	// Size is the total byte size of the segment, header and table
	// included. Must satisfy MinSegmentSize <= Size <= MaxSegmentSize.
	//
	// Default: 1MiB
	Size uint32

	// MaxEntries is the metadata table's entry capacity, fixed for the life
	// of the segment. The value is not stored in the 16-byte segment
	// header, so every participant that opens this segment MUST agree on
	// it out of band.
	//
	// Default: 128
	MaxEntries uint32

	// Registerer, if set, receives the segment's metrics collectors. Nil
	// (the default) disables metrics entirely.
	Registerer prometheus.Registerer
}

// OptionFunc is a function type that modifies segment creation configuration.
type OptionFunc func(*Options)

// WithSize overrides the segment's total byte size. Values outside
// [MinSegmentSize, MaxSegmentSize] are ignored rather than returning an
// error; the previous (default) size is kept silently instead of failing
// late.
func WithSize(size uint32) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.Size = size
		}
	}
}

// WithMaxEntries overrides the metadata table's entry capacity.
func WithMaxEntries(maxEntries uint32) OptionFunc {
	return func(o *Options) {
		if maxEntries > 0 {
			o.MaxEntries = maxEntries
		}
	}
}

// WithMetrics registers the segment's lifecycle and table-state collectors
// against reg. See pkg/metrics for what gets recorded.
func WithMetrics(reg prometheus.Registerer) OptionFunc {
	return func(o *Options) {
		o.Registerer = reg
	}
}

// Apply builds a fully-resolved Options from the defaults plus any supplied
// overrides, in order.
func Apply(opts ...OptionFunc) Options {
	resolved := NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}
