// Package segment implements the scoped acquisition of a named, fixed-size
// POSIX shared-memory region: create-or-fail, open-existing,
// unlink-by-name, and guaranteed release on every exit path.
//
// On Linux, POSIX shared-memory objects are just files backed by the tmpfs
// mounted at /dev/shm, so this package talks to /dev/shm directly through
// golang.org/x/sys/unix rather than binding libc's shm_open wrapper.
package segment

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/iamNilotpal/zeroipc/internal/wire"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
	"github.com/iamNilotpal/zeroipc/pkg/metrics"
	"github.com/iamNilotpal/zeroipc/pkg/options"
)

const shmDir = "/dev/shm"

// Handle is a view over a mapped shared-memory segment: a raw base
// pointer and a size. It owns the file descriptor and the mmap'd region
// and guarantees both are released on Close, even when Close is reached
// via a failure path.
type Handle struct {
	mu      sync.Mutex
	name    string
	path    string
	fd      int
	data    []byte
	size    uint32
	closed  bool
	log     *zap.SugaredLogger
	metrics *metrics.Collectors
}

func shmPath(name string) string {
	if len(name) == 0 || name[0] != '/' {
		name = "/" + name
	}
	return shmDir + name
}

// Create creates the backing shared-memory object, truncates it to
// opts.Size, maps it PROT_READ|PROT_WRITE/MAP_SHARED, and writes a fresh
// SegmentHeader. It fails with ErrorCodeSegmentExists if the name already
// has a live backing object; this implementation never recycles an
// existing segment on Create, since another process may be mapping it.
//
// Any failure after the backing object is created causes it to be
// unlinked, so a failed Create never leaves a half-initialized segment
// behind for a later Open to stumble into.
func Create(name string, opts options.Options, log *zap.SugaredLogger, mcs *metrics.Collectors) (h *Handle, err error) {
	path := shmPath(name)

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0666)
	if err != nil {
		if err == unix.EEXIST {
			return nil, zerr.NewSegmentError(err, zerr.ErrorCodeSegmentExists, "segment already exists").
				WithName(name).WithPath(path)
		}
		return nil, zerr.ClassifyShmOpenError(err, name, path)
	}

	// From here on, any failure must unlink the backing object so a failed
	// Create never leaves a half-initialized segment behind.
	defer func() {
		if err != nil {
			_ = unix.Unlink(path)
		}
	}()

	if err = unix.Ftruncate(fd, int64(opts.Size)); err != nil {
		unix.Close(fd)
		return nil, zerr.ClassifyFtruncateError(err, name, path, opts.Size)
	}

	data, mmapErr := unix.Mmap(fd, 0, int(opts.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mmapErr != nil {
		unix.Close(fd)
		return nil, zerr.ClassifyMmapError(mmapErr, name, path, opts.Size)
	}

	h = &Handle{
		name:    name,
		path:    path,
		fd:      fd,
		data:    data,
		size:    opts.Size,
		log:     log,
		metrics: mcs,
	}

	hdr := h.header()
	hdr.MagicValue = wire.Magic
	hdr.VersionNo = wire.Version
	hdr.EntryCount = 0
	hdr.NextOffset = wire.StructureRegionStart(opts.MaxEntries)

	log.Infow("segment created",
		"name", name, "path", path, "size", opts.Size, "maxEntries", opts.MaxEntries,
	)
	mcs.ObserveSegmentCreated()

	return h, nil
}

// Open maps an existing backing object R/W and validates its header. It
// fails with ErrorCodeSegmentNotFound or ErrorCodeSegmentInvalid without
// mutating anything.
func Open(name string, log *zap.SugaredLogger, mcs *metrics.Collectors) (h *Handle, err error) {
	path := shmPath(name)

	fd, openErr := unix.Open(path, unix.O_RDWR, 0)
	if openErr != nil {
		return nil, zerr.ClassifyShmOpenError(openErr, name, path)
	}

	var stat unix.Stat_t
	if statErr := unix.Fstat(fd, &stat); statErr != nil {
		unix.Close(fd)
		return nil, zerr.NewSegmentError(statErr, zerr.ErrorCodeIO, "failed to stat segment").
			WithName(name).WithPath(path).WithDetail("operation", "fstat")
	}

	size := uint32(stat.Size)
	if size < wire.SegmentHeaderSize {
		unix.Close(fd)
		return nil, zerr.NewSegmentError(nil, zerr.ErrorCodeSegmentInvalid, "segment too small to contain a header").
			WithName(name).WithPath(path).WithDetail("size", size)
	}

	data, mmapErr := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mmapErr != nil {
		unix.Close(fd)
		return nil, zerr.ClassifyMmapError(mmapErr, name, path, size)
	}

	h = &Handle{name: name, path: path, fd: fd, data: data, size: size, log: log, metrics: mcs}

	hdr := h.header()
	if hdr.MagicValue != wire.Magic {
		_ = h.Close()
		return nil, zerr.NewSegmentError(nil, zerr.ErrorCodeSegmentInvalid, "bad magic: not a ZeroIPC segment").
			WithName(name).WithPath(path).
			WithDetail("gotMagic", fmt.Sprintf("0x%08X", hdr.MagicValue)).
			WithDetail("wantMagic", fmt.Sprintf("0x%08X", wire.Magic))
	}
	if hdr.VersionNo != wire.Version {
		_ = h.Close()
		return nil, zerr.NewSegmentError(nil, zerr.ErrorCodeSegmentInvalid, "unsupported segment version").
			WithName(name).WithPath(path).
			WithDetail("gotVersion", hdr.VersionNo).
			WithDetail("wantVersion", wire.Version)
	}

	log.Infow("segment opened", "name", name, "path", path, "size", size)
	mcs.ObserveSegmentOpened()

	return h, nil
}

// Destroy unlinks the backing object by name. Already-mapped handles
// remain valid until Close: unlinking removes the name from the
// filesystem but a tmpfs inode stays alive as long as something holds it
// mapped or open.
func Destroy(name string) error {
	path := shmPath(name)
	if err := unix.Unlink(path); err != nil {
		if err == unix.ENOENT {
			return zerr.NewSegmentError(err, zerr.ErrorCodeSegmentNotFound, "segment not found").
				WithName(name).WithPath(path)
		}
		return zerr.NewSegmentError(err, zerr.ErrorCodeIO, "failed to unlink segment").
			WithName(name).WithPath(path)
	}
	return nil
}

// Close unmaps the segment and releases its file descriptor. Safe to call
// more than once; subsequent calls are no-ops. Close never returns an
// error for an already-closed handle: it is a release operation, not a
// lifecycle-state assertion.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var firstErr error
	if h.data != nil {
		if err := unix.Munmap(h.data); err != nil {
			firstErr = zerr.NewSegmentError(err, zerr.ErrorCodeIO, "failed to unmap segment").
				WithName(h.name).WithPath(h.path)
		}
		h.data = nil
	}
	if h.fd != 0 {
		if err := unix.Close(h.fd); err != nil && firstErr == nil {
			firstErr = zerr.NewSegmentError(err, zerr.ErrorCodeIO, "failed to close segment descriptor").
				WithName(h.name).WithPath(h.path)
		}
		h.fd = 0
	}

	if h.log != nil {
		h.log.Infow("segment closed", "name", h.name, "path", h.path)
	}
	h.metrics.ObserveSegmentClosed()

	return firstErr
}

// Name returns the segment's shared-memory name.
func (h *Handle) Name() string { return h.name }

// Size returns the segment's total byte size.
func (h *Handle) Size() uint32 { return h.size }

// Bytes exposes the full mapped region. Structure and table code index
// into this directly; there is no bounds-checked accessor layer once a
// structure has been located.
func (h *Handle) Bytes() []byte { return h.data }

// RawBase returns a pointer to byte 0 of the segment.
func (h *Handle) RawBase() unsafe.Pointer {
	if len(h.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&h.data[0])
}

// header returns a typed view over the segment header at offset 0.
func (h *Handle) header() *wire.SegmentHeader {
	return (*wire.SegmentHeader)(h.RawBase())
}

// Header exposes the segment header for the table package, which is the
// only other package allowed to mutate EntryCount/NextOffset.
func (h *Handle) Header() *wire.SegmentHeader { return h.header() }

// Metrics exposes the segment's metrics collectors for the table package.
func (h *Handle) Metrics() *metrics.Collectors { return h.metrics }
