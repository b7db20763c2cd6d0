package pool

import "sync"

// adapterCache memoizes constructed adapters by (family, uuid) so a probe
// sweep and request-time selection don't rebuild transport/auth state on
// every call. The lock discipline mirrors the teacher's former model
// mapping cache: a single mutex guarding a plain map, sized for the low
// cardinality of a provider pool rather than needing sharding.
type adapterCache struct {
	mu    sync.Mutex
	items map[string]Adapter
}

func newAdapterCache() *adapterCache {
	return &adapterCache{items: make(map[string]Adapter)}
}

func adapterCacheKey(family Family, uuid string) string {
	return string(family) + "/" + uuid
}

// getOrCreate returns the cached adapter for the key, or builds and caches
// one via build on miss.
func (c *adapterCache) getOrCreate(family Family, uuid string, build func() (Adapter, error)) (Adapter, error) {
	key := adapterCacheKey(family, uuid)

	c.mu.Lock()
	if a, ok := c.items[key]; ok {
		c.mu.Unlock()
		return a, nil
	}
	c.mu.Unlock()

	a, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = a
	return a, nil
}

// invalidate drops a cached adapter, forcing the next probe or selection
// to rebuild it. Called before each supervisor sweep (§4.3: "the cache is
// cleared before each probe") so credential edits made between sweeps take
// effect.
func (c *adapterCache) invalidate(family Family, uuid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, adapterCacheKey(family, uuid))
}

// clear drops every cached adapter.
func (c *adapterCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Adapter)
}
