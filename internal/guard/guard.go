// Package guard is the boundary between host catalog code, which reports
// failures by panicking with a *host.Error, and bridge code, which works
// with returned errors.
//
// Every host catalog call made by the bridge goes through Call or Do (or the
// Catalog wrapper built on them). Only host error signals are intercepted;
// any other panic is a bug and keeps unwinding.
package guard

import (
	"log"

	"goBridge/internal/dberr"
	"goBridge/internal/host"
)

// Call runs fn and returns its result. A host error raised by fn is
// returned as a dberr.HostError carrying the host's message and SQLSTATE.
func Call[T any](op string, fn func() T) (result T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		herr, ok := r.(*host.Error)
		if !ok {
			panic(r)
		}
		log.Printf("[DEBUG] host error intercepted in %s: %s", op, herr.Message)
		var zero T
		result = zero
		err = &dberr.Error{
			Kind:      dberr.HostError,
			Code:      herr.SQLState,
			Message:   herr.Message,
			Operation: op,
			Component: "guard",
			Cause:     herr,
		}
	}()
	return fn(), nil
}

// Do is Call for functions without a result.
func Do(op string, fn func()) error {
	_, err := Call(op, func() struct{} {
		fn()
		return struct{}{}
	})
	return err
}

// Catalog exposes a host.Catalog through error-returning methods.
type Catalog struct {
	host host.Catalog
}

// NewCatalog wraps cat.
func NewCatalog(cat host.Catalog) *Catalog {
	return &Catalog{host: cat}
}

// SearchCache looks up one row. A nil tuple with a nil error means no row.
func (c *Catalog) SearchCache(cache host.CacheID, key host.OID) (*host.Tuple, error) {
	return Call("SearchCache", func() *host.Tuple {
		return c.host.SearchCache(cache, key)
	})
}

// ReleaseCache unpins a tuple returned by SearchCache.
func (c *Catalog) ReleaseCache(tup *host.Tuple) error {
	return Do("ReleaseCache", func() {
		c.host.ReleaseCache(tup)
	})
}

// SearchCacheList looks up every row matching key in a list cache.
func (c *Catalog) SearchCacheList(cache host.CacheID, key host.OID) ([]*host.Tuple, error) {
	return Call("SearchCacheList", func() []*host.Tuple {
		return c.host.SearchCacheList(cache, key)
	})
}

// ReleaseCacheList unpins a list returned by SearchCacheList.
func (c *Catalog) ReleaseCacheList(list []*host.Tuple) error {
	return Do("ReleaseCacheList", func() {
		c.host.ReleaseCacheList(list)
	})
}
