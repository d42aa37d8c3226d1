package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process page layer. Pages are copied on the way
// in and out so a caller editing its slice cannot corrupt the entry.
type MemoryCache struct {
	pages *gocache.Cache
}

// NewMemoryCache keeps pages for ttl; expired pages are swept every ttl.
// A ttl of 0 or less keeps pages until deleted.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	sweep := ttl
	if ttl <= 0 {
		ttl, sweep = gocache.NoExpiration, 0
	}
	return &MemoryCache{pages: gocache.New(ttl, sweep)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.pages.Get(key)
	if !found {
		return nil, false
	}
	page, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), page...), true
}

func (c *MemoryCache) Set(key string, page []byte, ttl time.Duration) error {
	c.pages.Set(key, append([]byte(nil), page...), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.pages.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.pages.Flush()
	return nil
}

// Len returns the number of stored pages, expired ones included until swept
func (c *MemoryCache) Len() int {
	return c.pages.ItemCount()
}
