// Package staging implements the write-through overlay over a read-only
// StateView that absorbs write sets produced by earlier transactions in a
// batch so later transactions observe the post-image (spec.md §4.1).
//
// Grounded on the teacher's x/vm/statedb dirty/committed overlay split and
// on the "cache context" pattern referenced in
// x/vm/keeper/state_transition.go's ApplyTransaction.
package staging

import (
	"sync"

	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

const tombstone = "\x00tombstone"

// Cache is an in-memory overlay above a types.StateView. It never mutates
// the backing view; all mutation lives in the overlay map. Reads may be
// called concurrently with each other (e.g. during parallel signature
// verification's incidental config reads); Apply is driver-thread-only
// per spec.md §5.
type Cache struct {
	mu      sync.RWMutex
	backing types.StateView
	overlay map[string][]byte
}

// New returns a Cache overlaying backing. backing must be immutable for the
// lifetime of the Cache (spec.md §4.1 "Lifetimes").
func New(backing types.StateView) *Cache {
	return &Cache{
		backing: backing,
		overlay: make(map[string][]byte),
	}
}

// Read returns the overlay value if present, else delegates to the backing
// view. Returns (nil, false, nil) for an absent key, and a StorageError if
// the backing view itself errors.
func (c *Cache) Read(path types.AccessPath) ([]byte, bool, error) {
	c.mu.RLock()
	v, ok := c.overlay[string(path)]
	c.mu.RUnlock()
	if ok {
		if v == nil {
			return nil, false, nil // tombstoned
		}
		return v, true, nil
	}

	val, found, err := c.backing.Get(path)
	if err != nil {
		return nil, false, vmstatus.ErrStorageError.Wrap(err.Error())
	}
	return val, found, nil
}

// Apply records every entry of ws in insertion order. A later write for the
// same path in the same or a later Apply call supersedes earlier entries
// (last-writer-wins overlay semantics, spec.md §4.1).
func (c *Cache) Apply(ws *types.WriteSet) {
	if ws == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ws.Iter(func(path types.AccessPath, op types.WriteOp) {
		if op.IsDeletion() {
			c.overlay[string(path)] = nil
		} else {
			c.overlay[string(path)] = op.Value
		}
	})
}

// Snapshot returns a read-only handle bound to the cache's current state,
// for use as the interpreter's read API (spec.md §4.1 "snapshot()").
// Because Cache is itself read-through and append-only from the caller's
// point of view during one transaction's execution, the cache is its own
// snapshot; the method exists to give session.Handle a narrow, explicitly
// read-only type to depend on.
func (c *Cache) Snapshot() types.StateView {
	return (*readOnly)(c)
}

type readOnly Cache

func (r *readOnly) Get(path types.AccessPath) ([]byte, bool, error) {
	return (*Cache)(r).Read(path)
}
