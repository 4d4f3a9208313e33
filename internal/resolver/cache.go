package resolver

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps specifier strings to resolved packages and stores artifact
// bytes once per content hash. It lives across incremental rebuilds.
// Safe for concurrent use, including by resolvers with different contexts:
// a caller joining a fetch whose owner was cancelled fetches again.
type Cache struct {
	mu     sync.RWMutex
	bySpec map[string]*Package
	blobs  map[string][]byte
	group  singleflight.Group
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		bySpec: make(map[string]*Package),
		blobs:  make(map[string][]byte),
	}
}

// Get returns the cached package for a specifier.
func (c *Cache) Get(spec string) (*Package, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.bySpec[spec]
	return p, ok
}

// Put stores p under its specifier. When bytes with the same hash are
// already stored, p is rewritten to share them.
func (c *Cache) Put(p *Package) *Package {
	c.mu.Lock()
	defer c.mu.Unlock()

	if blob, ok := c.blobs[p.Hash]; ok {
		p.Data = blob
	} else {
		c.blobs[p.Hash] = p.Data
	}
	c.bySpec[p.Spec.Raw] = p
	return p
}

// Invalidate drops one specifier. Blobs no longer referenced are released.
func (c *Cache) Invalidate(spec string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.bySpec[spec]; !ok {
		return false
	}
	delete(c.bySpec, spec)
	c.collect()
	return true
}

// InvalidateKind drops every specifier of the given kind and returns how many went.
func (c *Cache) InvalidateKind(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for raw, p := range c.bySpec {
		if p.Spec.Kind == kind {
			delete(c.bySpec, raw)
			n++
		}
	}
	if n > 0 {
		c.collect()
	}
	return n
}

// Retain drops every specifier not in keep and returns how many went.
func (c *Cache) Retain(keep []string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[k] = true
	}
	n := 0
	for raw := range c.bySpec {
		if !wanted[raw] {
			delete(c.bySpec, raw)
			n++
		}
	}
	if n > 0 {
		c.collect()
	}
	return n
}

// Len returns the number of cached specifiers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySpec)
}

// Blobs returns the number of distinct artifacts held.
func (c *Cache) Blobs() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blobs)
}

// collect releases blobs with no referencing specifier. Caller holds mu.
func (c *Cache) collect() {
	live := make(map[string]bool, len(c.bySpec))
	for _, p := range c.bySpec {
		live[p.Hash] = true
	}
	for hash := range c.blobs {
		if !live[hash] {
			delete(c.blobs, hash)
		}
	}
}

// do runs fn once per key among concurrent callers.
func (c *Cache) do(key string, fn func() (*Package, error)) (*Package, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Package), nil
}
