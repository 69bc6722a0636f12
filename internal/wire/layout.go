// Package wire defines the shared-memory byte layout every ZeroIPC
// participant agrees on, regardless of the language it is written in. Every constant and struct in this package is a wire
// contract: changing a field's type, order, or size changes what bytes a Go
// process and, say, a C++ or Rust process exchange, and must not be done
// without bumping Version.
//
// All multi-byte integers are little-endian. All structure payloads begin on
// an 8-byte boundary. Native Go pointers never appear in any type here,
// only byte offsets and slot indices: processes map the segment at
// different virtual addresses, so a stored pointer would be meaningless to
// every process but the one that wrote it.
package wire

import "unsafe"

const (
	// Magic identifies a ZeroIPC segment. 'ZIPM' read little-endian.
	Magic uint32 = 0x5A49504D

	// Version is the wire format version this implementation speaks.
	Version uint32 = 1

	// SegmentHeaderSize is the fixed size, in bytes, of SegmentHeader.
	SegmentHeaderSize = 16

	// TableEntrySize is the fixed size, in bytes, of one TableEntry.
	TableEntrySize = 40

	// MaxNameLen is the largest semantic name length the 32-byte name field
	// can hold, leaving room for the mandatory NUL terminator.
	MaxNameLen = 31

	// DefaultMaxEntries is the compiled-in table capacity every participant
	// of this implementation agrees on. The 16-byte segment header does not
	// carry max_entries, so it has to be a separately communicated
	// constant; this is that constant. All participants on a given segment
	// MUST use the same value. There is no on-wire negotiation of it.
	DefaultMaxEntries = 128
)

// SegmentHeader is the first 16 bytes of every ZeroIPC segment. Field order
// is normative.
type SegmentHeader struct {
	MagicValue uint32
	VersionNo  uint32
	EntryCount uint32
	NextOffset uint32
}

func init() {
	if unsafe.Sizeof(SegmentHeader{}) != SegmentHeaderSize {
		panic("wire: SegmentHeader size drifted from the 16-byte wire contract")
	}
}

// TableEntry is one 40-byte record in the metadata table: a fixed-width name
// plus the (offset, size) pair it resolves to.
type TableEntry struct {
	NameBytes [32]byte
	Offset    uint32
	Size      uint32
}

func init() {
	if unsafe.Sizeof(TableEntry{}) != TableEntrySize {
		panic("wire: TableEntry size drifted from the 40-byte wire contract")
	}
}

// TableRegionSize returns the byte size of the entry array for a table with
// the given entry capacity.
func TableRegionSize(maxEntries uint32) uint32 {
	return maxEntries * TableEntrySize
}

// StructureRegionStart returns the first byte offset available for
// structure allocation: immediately after the header and the entry table.
func StructureRegionStart(maxEntries uint32) uint32 {
	return SegmentHeaderSize + TableRegionSize(maxEntries)
}

// AlignUp8 rounds off up to the next multiple of 8, the alignment every
// structure payload requires.
func AlignUp8(off uint32) uint32 {
	return (off + 7) &^ 7
}

// EncodeName copies name into a zero-padded 32-byte wire field, NUL
// terminated. The caller must have already validated len(name) <= MaxNameLen.
func EncodeName(name string) [32]byte {
	var out [32]byte
	copy(out[:MaxNameLen], name)
	return out
}

// DecodeName extracts the semantic name from a 32-byte wire field: bytes up
// to the first NUL. Trailing bytes beyond the terminator are indeterminate
// and ignored here.
func DecodeName(field [32]byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field[:])
}
