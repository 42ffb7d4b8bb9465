// Package cache is a small TTL cache in front of the read queries, so feed
// endpoints don't hit Postgres on every request between collection runs.
package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const DefaultTTL = 5 * time.Minute

type Cache struct {
	inner *gocache.Cache
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{inner: gocache.New(ttl, 2*ttl)}
}

func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.inner.Get(key)
}

func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.inner.SetDefault(key, value)
}

// Invalidate drops every entry. Called after collection and retention runs
// so readers never wait a full TTL for fresh items.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.inner.Flush()
}

// Key builds a stable cache key from a query name and its parameters.
func Key(name string, params ...any) string {
	key := name
	for _, p := range params {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}
