package enumbridge

import (
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"goBridge/internal/guest"
	"goBridge/internal/host"
)

// DefaultCacheSize is the number of guest enum types kept when no size is configured.
const DefaultCacheSize = 256

// TypeCache keeps the guest enum types built for host enum types, keyed by
// host type OID. Entries are dropped on host catalog invalidations so a
// type changed by DDL is rebuilt on next use.
type TypeCache struct {
	types *lru.Cache[host.OID, guest.LogicalType]
}

// NewTypeCache creates a cache holding up to size types.
func NewTypeCache(size int) (*TypeCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[host.OID, guest.LogicalType](size)
	if err != nil {
		return nil, fmt.Errorf("create type cache: %w", err)
	}
	return &TypeCache{types: c}, nil
}

// Get returns the cached guest type for typeOID.
func (c *TypeCache) Get(typeOID host.OID) (guest.LogicalType, bool) {
	return c.types.Get(typeOID)
}

// Add stores t for typeOID.
func (c *TypeCache) Add(typeOID host.OID, t guest.LogicalType) {
	if evicted := c.types.Add(typeOID, t); evicted {
		log.Printf("[DEBUG] enum type cache full, evicted least recently used entry")
	}
}

// Len returns the number of cached types.
func (c *TypeCache) Len() int {
	return c.types.Len()
}

// Purge drops every entry.
func (c *TypeCache) Purge() {
	c.types.Purge()
}

// Invalidate handles a host syscache invalidation. A type change drops that
// type; a member change drops every cached type containing the member; an
// unknown cache drops everything.
func (c *TypeCache) Invalidate(cache host.CacheID, key host.OID) {
	switch cache {
	case host.TypeOID:
		if c.types.Remove(key) {
			log.Printf("[DEBUG] enum type cache invalidated type %d", key)
		}
	case host.EnumOID:
		for _, typeOID := range c.types.Keys() {
			t, ok := c.types.Peek(typeOID)
			if !ok {
				continue
			}
			if _, err := GetEnumPosition(key, t); err == nil {
				c.types.Remove(typeOID)
				log.Printf("[DEBUG] enum type cache invalidated type %d via member %d", typeOID, key)
			}
		}
	default:
		c.types.Purge()
	}
}

// Attach subscribes the cache to inv's invalidations.
func (c *TypeCache) Attach(inv host.Invalidator) {
	inv.RegisterSyscacheCallback(c.Invalidate)
}
