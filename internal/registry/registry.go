// Package registry caches named structure views inside one Instance so
// repeated OpenX calls for the same name skip the table scan and return the
// same in-process handle. It is the same "name -> location" in-memory
// mapping shape a Bitcask-style KeyDir index uses for on-disk records,
// adapted here to cache in-memory structure views instead of disk record
// pointers.
package registry

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Registry is a concurrency-safe cache of named, already-resolved
// structure views.
type Registry struct {
	mu     sync.RWMutex
	views  map[string]any
	log    *zap.SugaredLogger
	closed atomic.Bool
}

// New creates an empty Registry. log may be nil to disable logging.
func New(log *zap.SugaredLogger) *Registry {
	return &Registry{views: make(map[string]any, 16), log: log}
}

// Close clears the registry's cached views. Safe to call more than once.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.views)
	r.views = nil

	if r.log != nil {
		r.log.Infow("view registry closed")
	}
}

func get[T any](r *Registry, name string) (T, bool) {
	var zero T
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.views[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

func put[T any](r *Registry, name string, view T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.views != nil {
		r.views[name] = view
	}
}

// GetOrOpen returns the cached view of type T for name, opening and caching
// it with open if absent. A name reused with a different T than it was
// first cached under is treated as a cache miss: open is called again and
// the new value replaces the old entry under its new type.
func GetOrOpen[T any](r *Registry, name string, open func() (T, error)) (T, error) {
	if v, ok := get[T](r, name); ok {
		return v, nil
	}

	v, err := open()
	if err != nil {
		var zero T
		return zero, err
	}

	put(r, name, v)
	return v, nil
}

// Forget removes name's cached view, if any, so the next GetOrOpen call
// reopens it.
func (r *Registry) Forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.views != nil {
		delete(r.views, name)
	}
}
