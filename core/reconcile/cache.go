package reconcile

import (
	"context"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot is a keyed view of the target system for one scope.
type Snapshot[T any] struct {
	// Index maps join keys to target entities.
	Index map[string]T

	// Built is the timestamp when this snapshot was loaded.
	Built time.Time

	// TTL is the time-to-live for this snapshot.
	TTL time.Duration
}

// IsExpired returns true if this snapshot has expired based on its TTL.
// A zero TTL never expires.
func (s *Snapshot[T]) IsExpired() bool {
	if s.TTL == 0 {
		return false
	}
	return time.Since(s.Built) > s.TTL
}

// LoaderFunc loads the full index for a scope.
type LoaderFunc[T any] func(ctx context.Context, scope string) (map[string]T, error)

// SnapshotCache holds target snapshots keyed by scope (a category, or "" for
// the whole target). Concurrent loads of the same scope are collapsed into one.
type SnapshotCache[T any] struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot[T]
	sf        singleflight.Group
	load      LoaderFunc[T]
	ttl       time.Duration
}

// NewSnapshotCache creates a cache that loads missing or expired scopes with load.
// A zero ttl keeps snapshots for the life of the cache.
func NewSnapshotCache[T any](load LoaderFunc[T], ttl time.Duration) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		snapshots: make(map[string]*Snapshot[T]),
		load:      load,
		ttl:       ttl,
	}
}


// Get returns a copy of the snapshot index for scope, loading it when missing
// or expired. Callers may keep the copy while Put updates the cached index.
func (c *SnapshotCache[T]) Get(ctx context.Context, scope string) (map[string]T, error) {
	if index, ok := c.cached(scope); ok {
		return index, nil
	}

	_, err, _ := c.sf.Do(scope, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		c.mu.RLock()
		snap, exists := c.snapshots[scope]
		c.mu.RUnlock()

		if exists && !snap.IsExpired() {
			return nil, nil
		}

		index, err := c.load(ctx, scope)
		if err != nil {
			return nil, err
		}
		if index == nil {
			index = make(map[string]T)
		}

		c.mu.Lock()
		c.snapshots[scope] = &Snapshot[T]{Index: index, Built: time.Now(), TTL: c.ttl}
		c.mu.Unlock()

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if snap, ok := c.snapshots[scope]; ok {
		return maps.Clone(snap.Index), nil
	}
	return make(map[string]T), nil
}

func (c *SnapshotCache[T]) cached(scope string) (map[string]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.snapshots[scope]
	if !ok || snap.IsExpired() {
		return nil, false
	}
	return maps.Clone(snap.Index), true
}

// Put records a write made after the snapshot was loaded, so later plans in the
// same run see it. Scopes that are not loaded yet are left alone.
func (c *SnapshotCache[T]) Put(scope, key string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap, ok := c.snapshots[scope]; ok {
		snap.Index[key] = item
	}
}
