package cache

import "time"

// PageCache stores fetched pages keyed by locator. A nil store disables it.
type PageCache struct {
	store Cache
	ttl   time.Duration
}

// NewPageCache wraps store; ttl 0 defers to the store's default
func NewPageCache(store Cache, ttl time.Duration) *PageCache {
	return &PageCache{store: store, ttl: ttl}
}

// Enabled reports whether pages are cached at all
func (p *PageCache) Enabled() bool {
	return p != nil && p.store != nil
}

// Get returns the cached page for locator
func (p *PageCache) Get(locator string) ([]byte, bool) {
	if !p.Enabled() {
		return nil, false
	}
	return p.store.Get(CacheKey(locator))
}

// Put caches the page body for locator
func (p *PageCache) Put(locator string, body []byte) error {
	if !p.Enabled() {
		return nil
	}
	return p.store.Set(CacheKey(locator), body, p.ttl)
}

// Invalidate drops the cached page for locator
func (p *PageCache) Invalidate(locator string) error {
	if !p.Enabled() {
		return nil
	}
	return p.store.Delete(CacheKey(locator))
}

// Clear drops every cached page
func (p *PageCache) Clear() error {
	if !p.Enabled() {
		return nil
	}
	return p.store.Clear()
}
