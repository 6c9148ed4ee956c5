// Package gallery keeps the per-scope descriptor index that verification
// sessions match against. Views are immutable snapshots built off the record
// store and cached until enrollment invalidates the scope.
package gallery

import (
	"sync"
	"sync/atomic"
	"time"
)

// Identity is one enrolled employee inside a view, with every descriptor
// sample captured for them. Identities inside a view are kept in enrollment
// order, which is what makes tie-breaking deterministic.
type Identity struct {
	EmployeeId  int64
	Name        string
	Descriptors [][]float64
}

// View is an immutable snapshot of one (company, group) scope. An empty scope
// yields a view with no identities, not an error.
type View struct {
	CompanyId  int64
	GroupId    int64
	Identities []Identity
	Generation uint64
	LoadedAt   time.Time
}

// Empty reports whether the view has no descriptors at all.
func (v *View) Empty() bool {
	for _, id := range v.Identities {
		if len(id.Descriptors) > 0 {
			return false
		}
	}
	return true
}

// Loader reads the enrolled identities for one scope from the record store.
// Implementations must return identities in first-enrolled-first order.
type Loader interface {
	LoadScope(companyId, groupId int64) ([]Identity, error)
}

type scopeKey struct {
	companyId int64
	groupId   int64
}

type entry struct {
	view       *View
	lastAccess atomic.Int64 // unix nanos of the last Load hit
}

// Cache holds one view per scope. Loads on a miss go through the Loader and
// the finished view is swapped in whole, so concurrent readers either see the
// previous complete view or the new complete view, never a partial one.
type Cache struct {
	loader Loader

	mu      sync.RWMutex
	entries map[scopeKey]*entry
	// Per-scope invalidation counters. A load that started before an
	// Invalidate carries data from before the enrollment; the counter lets
	// the swap detect that and re-read instead of caching the stale view.
	invalidations map[scopeKey]uint64
	gen           uint64
}

func NewCache(loader Loader) *Cache {
	return &Cache{
		loader:        loader,
		entries:       make(map[scopeKey]*entry),
		invalidations: make(map[scopeKey]uint64),
	}
}

// Load returns the cached view for the scope, reading from the store on a miss.
func (c *Cache) Load(companyId, groupId int64) (*View, error) {
	key := scopeKey{companyId, groupId}

	for {
		now := time.Now()

		c.mu.RLock()
		e, ok := c.entries[key]
		inval := c.invalidations[key]
		c.mu.RUnlock()
		if ok {
			e.lastAccess.Store(now.UnixNano())
			return e.view, nil
		}

		// Build outside the lock; a concurrent Load for the same scope may
		// race us to the swap, in which case the later writer simply replaces
		// an equally fresh view.
		identities, err := c.loader.LoadScope(companyId, groupId)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.invalidations[key] != inval {
			// An Invalidate landed while the loader ran, so these identities
			// predate the enrollment that triggered it. Discard and re-read.
			c.mu.Unlock()
			continue
		}
		c.gen++
		view := &View{
			CompanyId:  companyId,
			GroupId:    groupId,
			Identities: identities,
			Generation: c.gen,
			LoadedAt:   now,
		}
		fresh := &entry{view: view}
		fresh.lastAccess.Store(now.UnixNano())
		c.entries[key] = fresh
		c.mu.Unlock()
		return view, nil
	}
}

// Invalidate drops the cached view for a scope so the next Load re-reads the
// store. Enrollment must call this after appending descriptors.
func (c *Cache) Invalidate(companyId, groupId int64) {
	key := scopeKey{companyId, groupId}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.invalidations[key]++
}

// Sweep drops views that have not been read for maxIdle and returns how many
// were removed. Run periodically so abandoned kiosk scopes do not pin memory.
func (c *Cache) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if e.lastAccess.Load() < cutoff {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
