package memhost

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"goBridge/internal/host"
)

// FirstNormalOID is the first OID handed out to user-defined objects.
const FirstNormalOID host.OID = 16384

type typeEntry struct {
	form    host.TypeForm
	members []*host.EnumForm // kept in sort order
}

// Host is an in-memory host server: a system catalog, the transaction and
// command-id counters of one backend, and the DDL that changes enum types.
type Host struct {
	mu      sync.RWMutex
	types   map[host.OID]*typeEntry
	byName  map[string]host.OID
	members map[host.OID]*host.EnumForm
	nextOID host.OID

	pinned    map[*host.Tuple]struct{}
	failNext  string
	syscaches []func(host.CacheID, host.OID)

	// transaction state of one backend, guarded by xmu
	xmu        sync.Mutex
	inXact     bool
	inBlock    bool
	blockAbort bool
	cid        host.CommandID
	cidUsed    bool
	xactCbs    []func(host.XactEvent)
}

// New creates an in-memory host with the built-in base types registered.
func New() *Host {
	h := &Host{
		types:   make(map[host.OID]*typeEntry),
		byName:  make(map[string]host.OID),
		members: make(map[host.OID]*host.EnumForm),
		pinned:  make(map[*host.Tuple]struct{}),
		nextOID: FirstNormalOID,
	}
	for _, bt := range []host.TypeForm{
		{OID: 16, Name: "bool", TypType: host.TypTypeBase},
		{OID: 23, Name: "int4", TypType: host.TypTypeBase},
		{OID: 25, Name: "text", TypType: host.TypTypeBase},
	} {
		h.types[bt.OID] = &typeEntry{form: bt}
		h.byName[bt.Name] = bt.OID
	}
	return h
}

// FailNextLookup makes the next cache search raise a host error with msg.
func (h *Host) FailNextLookup(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext = msg
}

// Pinned returns the number of tuples searched but not yet released.
func (h *Host) Pinned() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.pinned)
}

// SearchCache implements host.Catalog.
func (h *Host) SearchCache(cache host.CacheID, key host.OID) *host.Tuple {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkInjectedFailure()

	var tup *host.Tuple
	switch cache {
	case host.TypeOID:
		t, ok := h.types[key]
		if !ok {
			return nil
		}
		form := t.form
		tup = &host.Tuple{Cache: cache, Type: &form}
	case host.EnumOID:
		m, ok := h.members[key]
		if !ok {
			return nil
		}
		form := *m
		tup = &host.Tuple{Cache: cache, Enum: &form}
	default:
		host.Raise(host.StateInternal, "cache %s is not a single-row cache", cache)
	}
	h.pinned[tup] = struct{}{}
	return tup
}

// ReleaseCache implements host.Catalog.
func (h *Host) ReleaseCache(tup *host.Tuple) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pinned[tup]; !ok {
		host.Raise(host.StateInternal, "releasing catalog tuple that is not pinned")
	}
	delete(h.pinned, tup)
}

// SearchCacheList implements host.Catalog.
func (h *Host) SearchCacheList(cache host.CacheID, key host.OID) []*host.Tuple {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkInjectedFailure()

	if cache != host.EnumTypOIDName {
		host.Raise(host.StateInternal, "cache %s is not a list cache", cache)
	}
	t, ok := h.types[key]
	if !ok {
		return nil
	}
	list := make([]*host.Tuple, 0, len(t.members))
	for _, m := range t.members {
		form := *m
		tup := &host.Tuple{Cache: cache, Enum: &form}
		h.pinned[tup] = struct{}{}
		list = append(list, tup)
	}
	return list
}

// ReleaseCacheList implements host.Catalog.
func (h *Host) ReleaseCacheList(list []*host.Tuple) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tup := range list {
		if _, ok := h.pinned[tup]; !ok {
			host.Raise(host.StateInternal, "releasing catalog list entry that is not pinned")
		}
		delete(h.pinned, tup)
	}
}

// must hold h.mu
func (h *Host) checkInjectedFailure() {
	if h.failNext == "" {
		return
	}
	msg := h.failNext
	h.failNext = ""
	host.Raise(host.StateInternal, "%s", msg)
}

// RegisterSyscacheCallback implements host.Invalidator.
func (h *Host) RegisterSyscacheCallback(fn func(host.CacheID, host.OID)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syscaches = append(h.syscaches, fn)
}

func (h *Host) invalidate(cache host.CacheID, key host.OID) {
	h.mu.RLock()
	cbs := make([]func(host.CacheID, host.OID), len(h.syscaches))
	copy(cbs, h.syscaches)
	h.mu.RUnlock()

	for _, fn := range cbs {
		fn(cache, key)
	}
}

// CreateEnum implements host.DDL.
func (h *Host) CreateEnum(name string, labels []string) (host.OID, error) {
	if len(labels) == 0 {
		return host.InvalidOID, fmt.Errorf("enum %q must have at least one label", name)
	}
	h.mu.Lock()
	if _, exists := h.byName[name]; exists {
		h.mu.Unlock()
		return host.InvalidOID, fmt.Errorf("type %q already exists", name)
	}

	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			h.mu.Unlock()
			return host.InvalidOID, fmt.Errorf("enum label %q used more than once", l)
		}
		seen[l] = true
	}

	typOID := h.allocOID()
	entry := &typeEntry{form: host.TypeForm{OID: typOID, Name: name, TypType: host.TypTypeEnum}}
	for i, l := range labels {
		m := &host.EnumForm{OID: h.allocOID(), EnumTypID: typOID, SortOrder: float32(i + 1), Label: l}
		entry.members = append(entry.members, m)
		h.members[m.OID] = m
	}
	h.types[typOID] = entry
	h.byName[name] = typOID
	h.mu.Unlock()

	log.Printf("[DEBUG] created enum %s (oid %d) with %d labels", name, typOID, len(labels))
	return typOID, nil
}

// AddEnumValue implements host.DDL. The new label sorts after every existing one.
func (h *Host) AddEnumValue(name, label string) error {
	h.mu.Lock()
	typOID, ok := h.byName[name]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("type %q does not exist", name)
	}
	entry := h.types[typOID]
	if entry.form.TypType != host.TypTypeEnum {
		h.mu.Unlock()
		return fmt.Errorf("%q is not an enum", name)
	}
	for _, m := range entry.members {
		if m.Label == label {
			h.mu.Unlock()
			return fmt.Errorf("enum label %q already exists", label)
		}
	}
	last := entry.members[len(entry.members)-1].SortOrder
	m := &host.EnumForm{OID: h.allocOID(), EnumTypID: typOID, SortOrder: last + 1, Label: label}
	entry.members = append(entry.members, m)
	sort.Slice(entry.members, func(i, j int) bool { return entry.members[i].SortOrder < entry.members[j].SortOrder })
	h.members[m.OID] = m
	h.mu.Unlock()

	h.invalidate(host.TypeOID, typOID)
	return nil
}

// DropType implements host.DDL.
func (h *Host) DropType(name string) error {
	h.mu.Lock()
	typOID, ok := h.byName[name]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("type %q does not exist", name)
	}
	entry := h.types[typOID]
	if entry.form.TypType != host.TypTypeEnum {
		h.mu.Unlock()
		return fmt.Errorf("cannot drop built-in type %q", name)
	}
	for _, m := range entry.members {
		delete(h.members, m.OID)
	}
	delete(h.types, typOID)
	delete(h.byName, name)
	h.mu.Unlock()

	h.invalidate(host.TypeOID, typOID)
	return nil
}

// LookupTypeByName implements host.DDL.
func (h *Host) LookupTypeByName(name string) (host.OID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	oid, ok := h.byName[name]
	return oid, ok
}

// must hold h.mu
func (h *Host) allocOID() host.OID {
	oid := h.nextOID
	h.nextOID++
	return oid
}
