// Package table implements the metadata directory at the front of every
// ZeroIPC segment: a name -> (offset, size) mapping with a bump-allocation
// cursor.
//
// Find is a read path any participant can use freely. Add is the creator's
// path and is not concurrent-safe across processes; typical usage has one
// creator. This implementation still updates entry_count and next_offset
// with atomic stores so that a concurrent Find from another thread in the
// same process never observes a torn read.
package table

import (
	"sync/atomic"
	"unsafe"

	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
	"go.uber.org/zap"
)

// Entry is the resolved form of a table lookup: a name paired with its
// location and size inside the segment.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Table is an in-process view over a segment's metadata directory.
type Table struct {
	seg        *segment.Handle
	maxEntries uint32
	log        *zap.SugaredLogger
}

// New wraps seg with a Table that knows its table capacity, for the creator
// path where maxEntries was just chosen.
func New(seg *segment.Handle, maxEntries uint32, log *zap.SugaredLogger) *Table {
	return &Table{seg: seg, maxEntries: maxEntries, log: log}
}

// Open wraps seg with a Table for an opener. Openers that only call Find
// and Iter never need maxEntries; those operations bound themselves by
// entry_count, which is read from the segment itself. Callers that also
// need Add must know the creator's maxEntries out of band and should use
// New instead.
func Open(seg *segment.Handle, log *zap.SugaredLogger) *Table {
	return &Table{seg: seg, maxEntries: wire.DefaultMaxEntries, log: log}
}

func (t *Table) header() *wire.SegmentHeader { return t.seg.Header() }

func (t *Table) entryPtr(i uint32) *wire.TableEntry {
	base := uintptr(t.seg.RawBase())
	off := uintptr(wire.SegmentHeaderSize) + uintptr(i)*uintptr(wire.TableEntrySize)
	return (*wire.TableEntry)(unsafe.Pointer(base + off))
}

func entryCountPtr(h *wire.SegmentHeader) *uint32 { return &h.EntryCount }
func nextOffsetPtr(h *wire.SegmentHeader) *uint32 { return &h.NextOffset }

// EntryCount returns the table's current live entry count.
func (t *Table) EntryCount() uint32 {
	return atomic.LoadUint32(entryCountPtr(t.header()))
}

// NextOffset returns the current bump-allocation cursor.
func (t *Table) NextOffset() uint32 {
	return atomic.LoadUint32(nextOffsetPtr(t.header()))
}

// Find performs a linear scan of entry_count entries and byte-compares
// against each entry's name field. O(n) where n is the live entry count.
func (t *Table) Find(name string) (Entry, bool) {
	count := t.EntryCount()
	for i := uint32(0); i < count; i++ {
		e := t.entryPtr(i)
		if wire.DecodeName(e.NameBytes) == name {
			return Entry{Name: name, Offset: e.Offset, Size: e.Size}, true
		}
	}
	return Entry{}, false
}

// Add allocates size bytes for a new structure named name, aligned to 8
// bytes, and appends a table entry for it. It is the creator's path and
// returns a *pkg/errors.TableError when the name is a duplicate or too
// long, the table is full, or the allocation would exceed the segment.
// None of these mutate table state on failure.
func (t *Table) Add(name string, size uint32) (uint32, error) {
	if len(name) > wire.MaxNameLen {
		return 0, zerr.NewTableError(nil, zerr.ErrorCodeNameTooLong, "entry name exceeds 31 bytes").
			WithEntryName(name).WithDetail("length", len(name))
	}

	if _, exists := t.Find(name); exists {
		return 0, zerr.NewTableError(nil, zerr.ErrorCodeDuplicateName, "entry name already present in table").
			WithEntryName(name)
	}

	hdr := t.header()
	count := atomic.LoadUint32(entryCountPtr(hdr))
	if count >= t.maxEntries {
		return 0, zerr.NewTableError(nil, zerr.ErrorCodeTableFull, "metadata table is full").
			WithEntryName(name).WithDetail("maxEntries", t.maxEntries)
	}

	cursor := atomic.LoadUint32(nextOffsetPtr(hdr))
	aligned := wire.AlignUp8(cursor)
	if uint64(aligned)+uint64(size) > uint64(t.seg.Size()) {
		return 0, zerr.NewTableError(nil, zerr.ErrorCodeOutOfSpace, "bump allocation would exceed segment size").
			WithEntryName(name).WithNextOffset(cursor).
			WithDetail("requestedSize", size).WithDetail("segmentSize", t.seg.Size())
	}

	e := t.entryPtr(count)
	e.NameBytes = wire.EncodeName(name)
	e.Offset = aligned
	e.Size = size

	atomic.StoreUint32(nextOffsetPtr(hdr), aligned+size)
	atomic.StoreUint32(entryCountPtr(hdr), count+1)

	if t.log != nil {
		t.log.Infow("table entry added", "name", name, "offset", aligned, "size", size, "entryCount", count+1)
	}
	t.seg.Metrics().ObserveTableState(count+1, aligned+size)

	return aligned, nil
}

// Iter returns every live entry in creation order, as a finite slice.
func (t *Table) Iter() []Entry {
	count := t.EntryCount()
	out := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e := t.entryPtr(i)
		out = append(out, Entry{Name: wire.DecodeName(e.NameBytes), Offset: e.Offset, Size: e.Size})
	}
	return out
}

// All is a push iterator over the live entries with the iter.Seq[Entry]
// shape: the method value t.All can be ranged over with range-over-func
// (Go 1.23+), alongside Iter's slice form.
func (t *Table) All(yield func(Entry) bool) {
	for _, e := range t.Iter() {
		if !yield(e) {
			return
		}
	}
}
