package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// keyPrefix is bumped whenever the stored page format changes
const keyPrefix = "lifespan:v1:"

// Cache stores fetched pages as opaque bytes under a page key.
// Get reports a miss for absent or expired pages; Delete of an absent key
// is not an error.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, page []byte, ttl time.Duration) error // ttl 0 uses the store default
	Delete(key string) error
	Clear() error
}

// CacheKey derives the page key for a locator. The fragment never reaches
// the server, so "#section" links share one entry with the bare page.
func CacheKey(locator string) string {
	locator = strings.TrimSpace(locator)
	if u, err := url.Parse(locator); err == nil && (u.Fragment != "" || u.RawFragment != "") {
		u.Fragment, u.RawFragment = "", ""
		locator = u.String()
	}
	hash := sha256.Sum256([]byte(locator))
	return keyPrefix + hex.EncodeToString(hash[:])
}
