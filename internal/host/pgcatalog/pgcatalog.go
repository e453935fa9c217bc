// Package pgcatalog reads enum types straight from a live PostgreSQL
// server's pg_type and pg_enum catalogs and issues enum DDL against it.
package pgcatalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goBridge/internal/host"
)

// DefaultLookupTimeout bounds every catalog query when no timeout is configured.
const DefaultLookupTimeout = 5 * time.Second

// Catalog is a host catalog backed by a PostgreSQL connection pool.
type Catalog struct {
	pool    *pgxpool.Pool
	timeout time.Duration

	mu        sync.Mutex
	pinned    map[*host.Tuple]struct{}
	syscaches []func(host.CacheID, host.OID)
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*Catalog, error) {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[INFO] pg catalog: connected to %s:%d", config.ConnConfig.Host, config.ConnConfig.Port)
	return &Catalog{pool: pool, timeout: timeout, pinned: make(map[*host.Tuple]struct{})}, nil
}

// Close closes the pool.
func (c *Catalog) Close() {
	c.pool.Close()
}

// Pinned returns the number of tuples searched but not yet released.
func (c *Catalog) Pinned() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pinned)
}

func (c *Catalog) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// SearchCache implements host.Catalog. Query failures and timeouts are
// raised as host errors.
func (c *Catalog) SearchCache(cache host.CacheID, key host.OID) *host.Tuple {
	ctx, cancel := c.queryCtx()
	defer cancel()

	var tup *host.Tuple
	switch cache {
	case host.TypeOID:
		var name, typtype string
		err := c.pool.QueryRow(ctx, "SELECT typname::text, typtype::text FROM pg_type WHERE oid = $1", uint32(key)).
			Scan(&name, &typtype)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			host.Raise(host.StateConnection, "cache lookup failed for type %d: %v", key, err)
		}
		tup = &host.Tuple{Cache: cache, Type: &host.TypeForm{OID: key, Name: name, TypType: typtype[0]}}
	case host.EnumOID:
		var (
			typID int64
			sort  float64
			label string
		)
		err := c.pool.QueryRow(ctx,
			"SELECT enumtypid::bigint, enumsortorder::float8, enumlabel::text FROM pg_enum WHERE oid = $1", uint32(key)).
			Scan(&typID, &sort, &label)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			host.Raise(host.StateConnection, "cache lookup failed for enum member %d: %v", key, err)
		}
		tup = &host.Tuple{Cache: cache, Enum: &host.EnumForm{
			OID: key, EnumTypID: host.OID(typID), SortOrder: float32(sort), Label: label,
		}}
	default:
		host.Raise(host.StateInternal, "cache %s is not a single-row cache", cache)
	}

	c.pin(tup)
	return tup
}

// ReleaseCache implements host.Catalog.
func (c *Catalog) ReleaseCache(tup *host.Tuple) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pinned[tup]; !ok {
		host.Raise(host.StateInternal, "releasing catalog tuple that is not pinned")
	}
	delete(c.pinned, tup)
}

// SearchCacheList implements host.Catalog.
func (c *Catalog) SearchCacheList(cache host.CacheID, key host.OID) []*host.Tuple {
	if cache != host.EnumTypOIDName {
		host.Raise(host.StateInternal, "cache %s is not a list cache", cache)
	}
	ctx, cancel := c.queryCtx()
	defer cancel()

	rows, err := c.pool.Query(ctx,
		"SELECT oid::bigint, enumsortorder::float8, enumlabel::text FROM pg_enum WHERE enumtypid = $1 ORDER BY enumsortorder",
		uint32(key))
	if err != nil {
		host.Raise(host.StateConnection, "cache lookup failed for members of type %d: %v", key, err)
	}
	defer rows.Close()

	var list []*host.Tuple
	for rows.Next() {
		var (
			oid   int64
			sort  float64
			label string
		)
		if err := rows.Scan(&oid, &sort, &label); err != nil {
			host.Raise(host.StateConnection, "cache lookup failed for members of type %d: %v", key, err)
		}
		list = append(list, &host.Tuple{Cache: cache, Enum: &host.EnumForm{
			OID: host.OID(oid), EnumTypID: key, SortOrder: float32(sort), Label: label,
		}})
	}
	if err := rows.Err(); err != nil {
		host.Raise(host.StateConnection, "cache lookup failed for members of type %d: %v", key, err)
	}

	for _, tup := range list {
		c.pin(tup)
	}
	return list
}

// ReleaseCacheList implements host.Catalog.
func (c *Catalog) ReleaseCacheList(list []*host.Tuple) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tup := range list {
		if _, ok := c.pinned[tup]; !ok {
			host.Raise(host.StateInternal, "releasing catalog list entry that is not pinned")
		}
		delete(c.pinned, tup)
	}
}

func (c *Catalog) pin(tup *host.Tuple) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned[tup] = struct{}{}
}

// CreateEnum implements host.DDL.
func (c *Catalog) CreateEnum(name string, labels []string) (host.OID, error) {
	if len(labels) == 0 {
		return host.InvalidOID, fmt.Errorf("enum %q must have at least one label", name)
	}
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = quoteLiteral(l)
	}

	ctx, cancel := c.queryCtx()
	defer cancel()
	q := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", pgx.Identifier{name}.Sanitize(), strings.Join(quoted, ", "))
	if _, err := c.pool.Exec(ctx, q); err != nil {
		return host.InvalidOID, fmt.Errorf("create type %s: %w", name, err)
	}

	oid, ok := c.LookupTypeByName(name)
	if !ok {
		return host.InvalidOID, fmt.Errorf("type %s not visible after create", name)
	}
	log.Printf("[DEBUG] created enum %s (oid %d) with %d labels", name, oid, len(labels))
	return oid, nil
}

// AddEnumValue implements host.DDL.
func (c *Catalog) AddEnumValue(name, label string) error {
	oid, ok := c.LookupTypeByName(name)
	if !ok {
		return fmt.Errorf("type %q does not exist", name)
	}

	ctx, cancel := c.queryCtx()
	defer cancel()
	q := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", pgx.Identifier{name}.Sanitize(), quoteLiteral(label))
	if _, err := c.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("alter type %s: %w", name, err)
	}
	c.invalidate(host.TypeOID, oid)
	return nil
}

// DropType implements host.DDL.
func (c *Catalog) DropType(name string) error {
	oid, ok := c.LookupTypeByName(name)
	if !ok {
		return fmt.Errorf("type %q does not exist", name)
	}

	ctx, cancel := c.queryCtx()
	defer cancel()
	if _, err := c.pool.Exec(ctx, "DROP TYPE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("drop type %s: %w", name, err)
	}
	c.invalidate(host.TypeOID, oid)
	return nil
}

// LookupTypeByName implements host.DDL. A query failure reads as not found
// and is logged.
func (c *Catalog) LookupTypeByName(name string) (host.OID, bool) {
	ctx, cancel := c.queryCtx()
	defer cancel()

	var oid int64
	err := c.pool.QueryRow(ctx, "SELECT COALESCE(to_regtype($1)::oid::bigint, 0)", pgx.Identifier{name}.Sanitize()).Scan(&oid)
	if err != nil {
		log.Printf("[WARN] pg catalog: lookup of type %s failed: %v", name, err)
		return host.InvalidOID, false
	}
	return host.OID(oid), oid != 0
}

// RegisterSyscacheCallback implements host.Invalidator. Only DDL issued
// through this catalog is reported.
func (c *Catalog) RegisterSyscacheCallback(fn func(host.CacheID, host.OID)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syscaches = append(c.syscaches, fn)
}

func (c *Catalog) invalidate(cache host.CacheID, key host.OID) {
	c.mu.Lock()
	cbs := make([]func(host.CacheID, host.OID), len(c.syscaches))
	copy(cbs, c.syscaches)
	c.mu.Unlock()

	for _, fn := range cbs {
		fn(cache, key)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
