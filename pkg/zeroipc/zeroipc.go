// Package zeroipc is the primary entry point for the ZeroIPC shared-memory
// substrate: a segment of POSIX shared memory carrying a metadata table and
// any number of named, lock-free data structures and synchronization
// primitives, all reachable from any language that agrees on the wire
// format.
//
// Instance wraps one segment and its table. Because Go forbids type
// parameters on methods, the typed structure constructors (CreateArray,
// OpenQueue, and so on) are package-level generic functions taking an
// *Instance rather than methods on it.
package zeroipc

import (
	"context"
	"sync/atomic"

	"github.com/iamNilotpal/zeroipc/internal/registry"
	"github.com/iamNilotpal/zeroipc/internal/segment"
	"github.com/iamNilotpal/zeroipc/internal/structures/array"
	"github.com/iamNilotpal/zeroipc/internal/structures/hashmap"
	"github.com/iamNilotpal/zeroipc/internal/structures/hashset"
	"github.com/iamNilotpal/zeroipc/internal/structures/pool"
	"github.com/iamNilotpal/zeroipc/internal/structures/queue"
	"github.com/iamNilotpal/zeroipc/internal/structures/ring"
	"github.com/iamNilotpal/zeroipc/internal/structures/stack"
	zsync "github.com/iamNilotpal/zeroipc/internal/sync"
	"github.com/iamNilotpal/zeroipc/internal/table"
	zerr "github.com/iamNilotpal/zeroipc/pkg/errors"
	"github.com/iamNilotpal/zeroipc/pkg/filesys"
	"github.com/iamNilotpal/zeroipc/pkg/logger"
	"github.com/iamNilotpal/zeroipc/pkg/metrics"
	"github.com/iamNilotpal/zeroipc/pkg/options"
	"go.uber.org/zap"
)

// ErrInstanceClosed is returned when attempting to perform operations on a
// closed Instance.
var ErrInstanceClosed = zerr.NewSegmentError(nil, zerr.ErrorCodeInternal, "operation failed: instance is closed")

// Instance is the primary handle to one ZeroIPC segment: the mapped region,
// its metadata table, and the logger/metrics any structure built on top of
// it shares.
type Instance struct {
	seg     *segment.Handle
	tbl     *table.Table
	log     *zap.SugaredLogger
	metrics *metrics.Collectors
	views   *registry.Registry
	closed  atomic.Bool
}

// Create creates a brand-new segment named name, sized and configured per
// opts, and registers its metadata table. service names the logger for
// this instance.
func Create(ctx context.Context, service string, name string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)
	o := options.Apply(opts...)

	mcs := metrics.New()
	if o.Registerer != nil {
		if err := mcs.Register(o.Registerer); err != nil {
			return nil, err
		}
	}

	seg, err := segment.Create(name, o, log, mcs)
	if err != nil {
		return nil, err
	}

	tbl := table.New(seg, o.MaxEntries, log)

	return &Instance{seg: seg, tbl: tbl, log: log, metrics: mcs, views: registry.New(log)}, nil
}

// Open maps an existing segment named name and resolves its metadata
// table.
func Open(ctx context.Context, service string, name string) (*Instance, error) {
	log := logger.New(service)
	mcs := metrics.New()

	seg, err := segment.Open(name, log, mcs)
	if err != nil {
		return nil, err
	}

	tbl := table.Open(seg, log)

	return &Instance{seg: seg, tbl: tbl, log: log, metrics: mcs, views: registry.New(log)}, nil
}

// Destroy unlinks the backing shared-memory object by name. Already-open
// instances remain valid until Close.
func Destroy(name string) error {
	return segment.Destroy(name)
}

// ListSegments enumerates every candidate ZeroIPC segment currently backed
// by /dev/shm, validating each one's header without mapping it.
func ListSegments() ([]filesys.SegmentInfo, error) {
	return filesys.ListSegments()
}

// Close releases the instance's segment mapping and descriptor. Safe to
// call more than once.
func (i *Instance) Close() error {
	if !i.closed.CompareAndSwap(false, true) {
		return nil
	}
	i.views.Close()
	return i.seg.Close()
}

// Name returns the instance's segment name.
func (i *Instance) Name() string { return i.seg.Name() }

// Size returns the instance's segment size in bytes.
func (i *Instance) Size() uint32 { return i.seg.Size() }

// Table exposes the instance's metadata table for inspection, and for
// packages building structure types not yet covered by the constructors
// below.
func (i *Instance) Table() *table.Table { return i.tbl }

// Segment exposes the instance's underlying segment handle, for the same
// extensibility reason as Table.
func (i *Instance) Segment() *segment.Handle { return i.seg }

// Views exposes the instance's named-view cache directly, for callers
// building structure types not covered by the GetX wrappers below.
func (i *Instance) Views() *registry.Registry { return i.views }

func (i *Instance) checkOpen() error {
	if i.closed.Load() {
		return ErrInstanceClosed
	}
	return nil
}

// CreateArray allocates a new array named name with room for capacity
// elements of T inside i.
func CreateArray[T any](i *Instance, name string, capacity uint64) (*array.Array[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return array.Create[T](i.tbl, i.seg, name, capacity)
}

// OpenArray resolves an existing array named name inside i.
func OpenArray[T any](i *Instance, name string) (*array.Array[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return array.Open[T](i.tbl, i.seg, name)
}

// GetArray is OpenArray cached through i's view registry: repeated calls
// for the same name return the same *array.Array[T] without re-scanning
// the table.
func GetArray[T any](i *Instance, name string) (*array.Array[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return registry.GetOrOpen(i.views, "array:"+name, func() (*array.Array[T], error) {
		return array.Open[T](i.tbl, i.seg, name)
	})
}

// CreateQueue allocates a new MPMC ring queue named name with the given
// capacity (>= 2) inside i.
func CreateQueue[T any](i *Instance, name string, capacity uint64) (*queue.Queue[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return queue.Create[T](i.tbl, i.seg, name, capacity)
}

// OpenQueue resolves an existing queue named name inside i.
func OpenQueue[T any](i *Instance, name string) (*queue.Queue[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return queue.Open[T](i.tbl, i.seg, name)
}

// GetQueue is OpenQueue cached through i's view registry.
func GetQueue[T any](i *Instance, name string) (*queue.Queue[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return registry.GetOrOpen(i.views, "queue:"+name, func() (*queue.Queue[T], error) {
		return queue.Open[T](i.tbl, i.seg, name)
	})
}

// CreateStack allocates a new Treiber-style indexed stack named name inside
// i.
func CreateStack[T any](i *Instance, name string, capacity uint64) (*stack.Stack[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return stack.Create[T](i.tbl, i.seg, name, capacity)
}

// OpenStack resolves an existing stack named name inside i.
func OpenStack[T any](i *Instance, name string) (*stack.Stack[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return stack.Open[T](i.tbl, i.seg, name)
}

// CreateRing allocates a new SPSC ring buffer named name inside i.
func CreateRing[T any](i *Instance, name string, capacity uint64) (*ring.Ring[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return ring.Create[T](i.tbl, i.seg, name, capacity)
}

// OpenRing resolves an existing ring buffer named name inside i.
func OpenRing[T any](i *Instance, name string) (*ring.Ring[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return ring.Open[T](i.tbl, i.seg, name)
}

// CreateMap allocates a new open-addressed hash map named name with
// bucketCount buckets inside i.
func CreateMap[K comparable, V any](i *Instance, name string, bucketCount uint64) (*hashmap.Map[K, V], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return hashmap.Create[K, V](i.tbl, i.seg, name, bucketCount)
}

// OpenMap resolves an existing hash map named name inside i.
func OpenMap[K comparable, V any](i *Instance, name string) (*hashmap.Map[K, V], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return hashmap.Open[K, V](i.tbl, i.seg, name)
}

// GetMap is OpenMap cached through i's view registry.
func GetMap[K comparable, V any](i *Instance, name string) (*hashmap.Map[K, V], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return registry.GetOrOpen(i.views, "map:"+name, func() (*hashmap.Map[K, V], error) {
		return hashmap.Open[K, V](i.tbl, i.seg, name)
	})
}

// CreateSet allocates a new open-addressed hash set named name with
// bucketCount buckets inside i.
func CreateSet[K comparable](i *Instance, name string, bucketCount uint64) (*hashset.Set[K], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return hashset.Create[K](i.tbl, i.seg, name, bucketCount)
}

// OpenSet resolves an existing hash set named name inside i.
func OpenSet[K comparable](i *Instance, name string) (*hashset.Set[K], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return hashset.Open[K](i.tbl, i.seg, name)
}

// CreatePool allocates a new free-list object pool named name with
// capacity slots of T inside i.
func CreatePool[T any](i *Instance, name string, capacity uint32) (*pool.Pool[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return pool.Create[T](i.tbl, i.seg, name, capacity)
}

// OpenPool resolves an existing object pool named name inside i.
func OpenPool[T any](i *Instance, name string) (*pool.Pool[T], error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return pool.Open[T](i.tbl, i.seg, name)
}

// CreateSemaphore allocates a new counting semaphore named name inside i.
func (i *Instance) CreateSemaphore(name string, initial, maxCount int32) (*zsync.Semaphore, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.CreateSemaphore(i.tbl, i.seg, name, initial, maxCount)
}

// OpenSemaphore resolves an existing semaphore named name inside i.
func (i *Instance) OpenSemaphore(name string) (*zsync.Semaphore, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.OpenSemaphore(i.tbl, i.seg, name)
}

// CreateBarrier allocates a new reusable barrier named name for n
// participants inside i.
func (i *Instance) CreateBarrier(name string, n int32) (*zsync.Barrier, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.CreateBarrier(i.tbl, i.seg, name, n)
}

// OpenBarrier resolves an existing barrier named name inside i.
func (i *Instance) OpenBarrier(name string) (*zsync.Barrier, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.OpenBarrier(i.tbl, i.seg, name)
}

// CreateLatch allocates a new one-shot latch named name starting at count
// initial inside i.
func (i *Instance) CreateLatch(name string, initial int32) (*zsync.Latch, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.CreateLatch(i.tbl, i.seg, name, initial)
}

// OpenLatch resolves an existing latch named name inside i.
func (i *Instance) OpenLatch(name string) (*zsync.Latch, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	return zsync.OpenLatch(i.tbl, i.seg, name)
}
