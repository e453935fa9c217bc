package sqlcatalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"goBridge/internal/host"
)

// CreateEnum implements host.DDL.
func (c *Catalog) CreateEnum(name string, labels []string) (oid host.OID, err error) {
	if len(labels) == 0 {
		return host.InvalidOID, fmt.Errorf("enum %q must have at least one label", name)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return host.InvalidOID, fmt.Errorf("enum label %q used more than once", l)
		}
		seen[l] = true
	}

	tx, err := c.db.Begin()
	if err != nil {
		return host.InvalidOID, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, found, err := c.lookup(tx, name); err != nil {
		return host.InvalidOID, err
	} else if found {
		return host.InvalidOID, fmt.Errorf("type %q already exists", name)
	}

	typOID, err := c.reserveOIDs(tx, len(labels)+1)
	if err != nil {
		return host.InvalidOID, err
	}
	if _, err = tx.Exec(c.rebind("INSERT INTO bridge_types (oid, name, typtype) VALUES (?, ?, ?)"),
		int64(typOID), name, string(host.TypTypeEnum)); err != nil {
		return host.InvalidOID, fmt.Errorf("insert type %s: %w", name, err)
	}
	for i, l := range labels {
		memberOID := typOID + host.OID(i) + 1
		if _, err = tx.Exec(c.rebind("INSERT INTO bridge_enums (oid, enumtypid, sortorder, label) VALUES (?, ?, ?, ?)"),
			int64(memberOID), int64(typOID), float64(i+1), l); err != nil {
			return host.InvalidOID, fmt.Errorf("insert enum label %q: %w", l, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return host.InvalidOID, fmt.Errorf("commit: %w", err)
	}
	log.Printf("[DEBUG] created enum %s (oid %d) with %d labels", name, typOID, len(labels))
	return typOID, nil
}

// AddEnumValue implements host.DDL. The new label sorts after every existing one.
func (c *Catalog) AddEnumValue(name, label string) (err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	typOID, err := c.enumByName(tx, name)
	if err != nil {
		return err
	}

	var dup int
	if err = tx.QueryRow(c.rebind("SELECT COUNT(*) FROM bridge_enums WHERE enumtypid = ? AND label = ?"),
		int64(typOID), label).Scan(&dup); err != nil {
		return fmt.Errorf("check label: %w", err)
	}
	if dup > 0 {
		return fmt.Errorf("enum label %q already exists", label)
	}

	var last float64
	if err = tx.QueryRow(c.rebind("SELECT COALESCE(MAX(sortorder), 0) FROM bridge_enums WHERE enumtypid = ?"),
		int64(typOID)).Scan(&last); err != nil {
		return fmt.Errorf("read sort order: %w", err)
	}
	memberOID, err := c.reserveOIDs(tx, 1)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(c.rebind("INSERT INTO bridge_enums (oid, enumtypid, sortorder, label) VALUES (?, ?, ?, ?)"),
		int64(memberOID), int64(typOID), last+1, label); err != nil {
		return fmt.Errorf("insert enum label %q: %w", label, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.invalidate(host.TypeOID, typOID)
	return nil
}

// DropType implements host.DDL.
func (c *Catalog) DropType(name string) (err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	typOID, err := c.enumByName(tx, name)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(c.rebind("DELETE FROM bridge_enums WHERE enumtypid = ?"), int64(typOID)); err != nil {
		return fmt.Errorf("delete enum labels: %w", err)
	}
	if _, err = tx.Exec(c.rebind("DELETE FROM bridge_types WHERE oid = ?"), int64(typOID)); err != nil {
		return fmt.Errorf("delete type: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.invalidate(host.TypeOID, typOID)
	return nil
}

// LookupTypeByName implements host.DDL. A database failure reads as not found
// and is logged.
func (c *Catalog) LookupTypeByName(name string) (host.OID, bool) {
	oid, found, err := c.lookup(c.db, name)
	if err != nil {
		log.Printf("[WARN] sql catalog: lookup of type %s failed: %v", name, err)
		return host.InvalidOID, false
	}
	return oid, found
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (c *Catalog) lookup(q queryer, name string) (host.OID, bool, error) {
	var oid int64
	err := q.QueryRow(c.rebind("SELECT oid FROM bridge_types WHERE name = ?"), name).Scan(&oid)
	if errors.Is(err, sql.ErrNoRows) {
		return host.InvalidOID, false, nil
	}
	if err != nil {
		return host.InvalidOID, false, fmt.Errorf("lookup type %s: %w", name, err)
	}
	return host.OID(oid), true, nil
}

// enumByName returns the OID of enum type name, failing for unknown or
// non-enum types.
func (c *Catalog) enumByName(tx *sql.Tx, name string) (host.OID, error) {
	var (
		oid     int64
		typtype string
	)
	err := tx.QueryRow(c.rebind("SELECT oid, typtype FROM bridge_types WHERE name = ?"), name).Scan(&oid, &typtype)
	if errors.Is(err, sql.ErrNoRows) {
		return host.InvalidOID, fmt.Errorf("type %q does not exist", name)
	}
	if err != nil {
		return host.InvalidOID, fmt.Errorf("lookup type %s: %w", name, err)
	}
	if typtype != string(host.TypTypeEnum) {
		return host.InvalidOID, fmt.Errorf("%q is not an enum", name)
	}
	return host.OID(oid), nil
}

// reserveOIDs takes n oids from the counter and returns the first one. The
// counter only moves forward, so oids of dropped types are never handed out again.
func (c *Catalog) reserveOIDs(tx *sql.Tx, n int) (host.OID, error) {
	if _, err := tx.Exec(c.rebind("UPDATE bridge_meta SET next_oid = next_oid + ? WHERE id = 1"), int64(n)); err != nil {
		return host.InvalidOID, fmt.Errorf("advance oid counter: %w", err)
	}
	var next int64
	if err := tx.QueryRow("SELECT next_oid FROM bridge_meta WHERE id = 1").Scan(&next); err != nil {
		return host.InvalidOID, fmt.Errorf("read oid counter: %w", err)
	}
	return host.OID(next - int64(n)), nil
}
