package filesystem

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Cache is a bounded, caller-owned metadata cache keyed by path. Engines never
// cache on their own: a Cache lives exactly as long as its owner decides, and
// entries are only refreshed when the owner invalidates them. A Cache is safe
// for concurrent use.
type Cache struct {
	// lock serializes access to records.
	lock sync.Mutex
	// records maps paths to accumulated metadata.
	records *lru.Cache
}

// NewCache creates a new cache holding at most capacity paths. A capacity of
// zero or less means no limit.
func NewCache(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{records: lru.New(capacity)}
}

// load returns a copy of the cached metadata for a path.
func (c *Cache) load(path string) Metadata {
	c.lock.Lock()
	defer c.lock.Unlock()
	if value, ok := c.records.Get(path); ok {
		return *value.(*Metadata)
	}
	return Metadata{}
}

// store records a copy of metadata for a path.
func (c *Cache) store(path string, metadata Metadata) {
	c.lock.Lock()
	c.records.Add(path, &metadata)
	c.lock.Unlock()
}

// Invalidate discards the cached metadata for entry.
func (c *Cache) Invalidate(entry Entry) {
	c.lock.Lock()
	c.records.Remove(entry.Path())
	c.lock.Unlock()
}

// Clear discards all cached metadata.
func (c *Cache) Clear() {
	c.lock.Lock()
	c.records.Clear()
	c.lock.Unlock()
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.records.Len()
}

// CachedMetadata behaves like Metadata, but consults and updates cache. Only
// fields that the cache doesn't already know are queried. The returned
// metadata is a copy owned by the caller.
func (e *Engine) CachedMetadata(cache *Cache, entry Entry, fields Fields) (*Metadata, error) {
	metadata := cache.load(entry.Path())
	err := e.fill(entry, &metadata, fields)
	if err != nil && !IsKind(err, ErrorKindNotFound) {
		return nil, err
	}
	cache.store(entry.Path(), metadata)
	return &metadata, err
}
