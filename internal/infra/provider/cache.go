package provider

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// StatusCache absorbs bursts of concurrent status checks for the same order
// without hammering the upstream. It is a pure performance optimization: a
// miss always falls through to a live call, so it is never a source of truth.
type StatusCache interface {
	Get(key string) (*StatusResult, bool)
	Set(key string, result *StatusResult)
}

type TTLStatusCache struct {
	cache *ttlcache.Cache[string, *StatusResult]
}

func NewTTLStatusCache(ttl time.Duration) *TTLStatusCache {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *StatusResult](ttl),
		ttlcache.WithDisableTouchOnHit[string, *StatusResult](),
	)
	go c.Start()

	return &TTLStatusCache{cache: c}
}

func (c *TTLStatusCache) Get(key string) (*StatusResult, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *TTLStatusCache) Set(key string, result *StatusResult) {
	c.cache.Set(key, result, ttlcache.DefaultTTL)
}
