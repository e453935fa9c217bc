// Package sqlcatalog keeps a host enum catalog in a SQL database so it
// survives restarts. It serves the host catalog, DDL and invalidation
// interfaces on top of database/sql with sqlite, postgres or mysql drivers.
package sqlcatalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql" // mysql driver loaded here
	_ "github.com/lib/pq"              // postgres driver loaded here
	_ "modernc.org/sqlite"             // sqlite driver loaded here

	"github.com/hashicorp/go-multierror"

	"goBridge/internal/host"
)

// FirstNormalOID is the first OID handed out to enum types and members.
const FirstNormalOID host.OID = 16384

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bridge_types (oid BIGINT PRIMARY KEY, name VARCHAR(255) NOT NULL UNIQUE, typtype CHAR(1) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS bridge_enums (oid BIGINT PRIMARY KEY, enumtypid BIGINT NOT NULL, sortorder REAL NOT NULL, label VARCHAR(255) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS bridge_meta (id INT PRIMARY KEY, next_oid BIGINT NOT NULL)`,
}

var baseTypes = []host.TypeForm{
	{OID: 16, Name: "bool", TypType: host.TypTypeBase},
	{OID: 23, Name: "int4", TypType: host.TypTypeBase},
	{OID: 25, Name: "text", TypType: host.TypTypeBase},
}

// Catalog is a host catalog stored in a SQL database.
type Catalog struct {
	db     *sql.DB
	dbType string

	mu        sync.Mutex
	pinned    map[*host.Tuple]struct{}
	syscaches []func(host.CacheID, host.OID)
}

// DBType determines the driver for a connection string.
func DBType(conn string) (string, error) {
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		return "postgres", nil
	}
	if strings.Contains(conn, "@tcp(") {
		return "mysql", nil
	}
	if strings.HasPrefix(conn, "file:") || strings.HasSuffix(conn, ".sqlite") || strings.HasSuffix(conn, ".db") {
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database type in connection string")
}

// Open connects to conn, creates the catalog tables if needed and registers
// the built-in base types.
func Open(conn string) (*Catalog, error) {
	dbt, err := DBType(conn)
	if err != nil {
		return nil, fmt.Errorf("can't determine database type: %w", err)
	}

	db, err := sql.Open(dbt, conn)
	if err != nil {
		return nil, fmt.Errorf("error opening catalog database: %w", err)
	}
	if dbt == "sqlite" {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	c := &Catalog{db: db, dbType: dbt, pinned: make(map[*host.Tuple]struct{})}
	if err := c.init(); err != nil {
		return nil, multierror.Append(err, db.Close())
	}
	log.Printf("[INFO] sql catalog: using %s database", dbt)
	return c, nil
}

func (c *Catalog) init() error {
	for _, q := range schema {
		if _, err := c.db.Exec(q); err != nil {
			return fmt.Errorf("create catalog table: %w", err)
		}
	}
	for _, bt := range baseTypes {
		var n int
		if err := c.db.QueryRow(c.rebind("SELECT COUNT(*) FROM bridge_types WHERE oid = ?"), int64(bt.OID)).Scan(&n); err != nil {
			return fmt.Errorf("check base type %s: %w", bt.Name, err)
		}
		if n > 0 {
			continue
		}
		if _, err := c.db.Exec(c.rebind("INSERT INTO bridge_types (oid, name, typtype) VALUES (?, ?, ?)"),
			int64(bt.OID), bt.Name, string(bt.TypType)); err != nil {
			return fmt.Errorf("register base type %s: %w", bt.Name, err)
		}
	}
	return c.initOIDCounter()
}

// initOIDCounter seeds the oid counter above every oid already in use.
func (c *Catalog) initOIDCounter() error {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM bridge_meta WHERE id = 1").Scan(&n); err != nil {
		return fmt.Errorf("check oid counter: %w", err)
	}
	if n > 0 {
		return nil
	}
	var maxType, maxEnum int64
	if err := c.db.QueryRow("SELECT COALESCE(MAX(oid), 0) FROM bridge_types").Scan(&maxType); err != nil {
		return fmt.Errorf("read type oids: %w", err)
	}
	if err := c.db.QueryRow("SELECT COALESCE(MAX(oid), 0) FROM bridge_enums").Scan(&maxEnum); err != nil {
		return fmt.Errorf("read enum oids: %w", err)
	}
	next := max(int64(FirstNormalOID), maxType+1, maxEnum+1)
	if _, err := c.db.Exec(c.rebind("INSERT INTO bridge_meta (id, next_oid) VALUES (1, ?)"), next); err != nil {
		return fmt.Errorf("seed oid counter: %w", err)
	}
	return nil
}

// Close releases the database. Tuples still pinned are reported as an error.
func (c *Catalog) Close() error {
	var errs *multierror.Error

	c.mu.Lock()
	if n := len(c.pinned); n > 0 {
		errs = multierror.Append(errs, fmt.Errorf("%d catalog tuples still pinned", n))
	}
	c.mu.Unlock()

	if err := c.db.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close catalog database: %w", err))
	}
	return errs.ErrorOrNil()
}

// Pinned returns the number of tuples searched but not yet released.
func (c *Catalog) Pinned() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pinned)
}

// rebind turns ? placeholders into $n for postgres.
func (c *Catalog) rebind(q string) string {
	if c.dbType != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SearchCache implements host.Catalog. Database failures are raised as host errors.
func (c *Catalog) SearchCache(cache host.CacheID, key host.OID) *host.Tuple {
	var tup *host.Tuple
	switch cache {
	case host.TypeOID:
		form, err := c.typeByOID(key)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			host.Raise(host.StateInternal, "cache lookup failed for type %d: %v", key, err)
		}
		tup = &host.Tuple{Cache: cache, Type: form}
	case host.EnumOID:
		var (
			typID int64
			sort  float64
			label string
		)
		err := c.db.QueryRow(c.rebind("SELECT enumtypid, sortorder, label FROM bridge_enums WHERE oid = ?"), int64(key)).
			Scan(&typID, &sort, &label)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			host.Raise(host.StateInternal, "cache lookup failed for enum member %d: %v", key, err)
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
	forms, err := c.members(key)
	if err != nil {
		host.Raise(host.StateInternal, "cache lookup failed for members of type %d: %v", key, err)
	}

	list := make([]*host.Tuple, 0, len(forms))
	for i := range forms {
		tup := &host.Tuple{Cache: cache, Enum: &forms[i]}
		c.pin(tup)
		list = append(list, tup)
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

func (c *Catalog) typeByOID(oid host.OID) (*host.TypeForm, error) {
	var (
		name    string
		typtype string
	)
	err := c.db.QueryRow(c.rebind("SELECT name, typtype FROM bridge_types WHERE oid = ?"), int64(oid)).Scan(&name, &typtype)
	if err != nil {
		return nil, err
	}
	if typtype == "" {
		return nil, fmt.Errorf("type %d has an empty kind", oid)
	}
	return &host.TypeForm{OID: oid, Name: name, TypType: typtype[0]}, nil
}

// members returns the members of typeOID in sort order.
func (c *Catalog) members(typeOID host.OID) ([]host.EnumForm, error) {
	rows, err := c.db.Query(c.rebind("SELECT oid, sortorder, label FROM bridge_enums WHERE enumtypid = ? ORDER BY sortorder"),
		int64(typeOID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []host.EnumForm
	for rows.Next() {
		var (
			oid   int64
			sort  float64
			label string
		)
		if err := rows.Scan(&oid, &sort, &label); err != nil {
			return nil, err
		}
		forms = append(forms, host.EnumForm{OID: host.OID(oid), EnumTypID: typeOID, SortOrder: float32(sort), Label: label})
	}
	return forms, rows.Err()
}

// RegisterSyscacheCallback implements host.Invalidator.
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
