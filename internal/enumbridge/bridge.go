package enumbridge

import (
	"log"
	"sort"

	"goBridge/internal/dberr"
	"goBridge/internal/guard"
	"goBridge/internal/guest"
	"goBridge/internal/host"
)

// Bridge resolves host enum types through the host catalog. All catalog
// access goes through the guard.
type Bridge struct {
	catalog *guard.Catalog
	cache   *TypeCache
}

// New creates a bridge over cat. cache may be nil, in which case every
// EnumType call rebuilds the guest type.
func New(cat host.Catalog, cache *TypeCache) *Bridge {
	return &Bridge{catalog: guard.NewCatalog(cat), cache: cache}
}

// Cache returns the bridge's type cache, or nil.
func (b *Bridge) Cache() *TypeCache {
	return b.cache
}

// IsHostEnum reports whether typeOID names a host enum. An unknown type is
// not an error; callers probe arbitrary type ids.
func (b *Bridge) IsHostEnum(typeOID host.OID) (bool, error) {
	tup, err := b.catalog.SearchCache(host.TypeOID, typeOID)
	if err != nil {
		return false, err
	}
	if tup == nil {
		return false, nil
	}
	isEnum := tup.Type.TypType == host.TypTypeEnum
	if err := b.catalog.ReleaseCache(tup); err != nil {
		return false, err
	}
	return isEnum, nil
}

// ResolveHostEnumType returns the host enum type that owns the first member
// identifier in ids.
func (b *Bridge) ResolveHostEnumType(ids *guest.Vector) (host.OID, error) {
	if ids == nil || ids.Capacity() == 0 {
		return host.InvalidOID, dberr.New(dberr.InvalidInput, "no enum member oids to resolve a type from").
			In("enumbridge", "ResolveHostEnumType")
	}
	memberOID := host.OID(ids.GetUint32(0))

	tup, err := b.catalog.SearchCache(host.EnumOID, memberOID)
	if err != nil {
		return host.InvalidOID, err
	}
	if tup == nil {
		return host.InvalidOID, dberr.New(dberr.InvalidInput, "cache lookup failed for enum member with oid %d", memberOID).
			In("enumbridge", "ResolveHostEnumType")
	}
	typeOID := tup.Enum.EnumTypID
	if err := b.catalog.ReleaseCache(tup); err != nil {
		return host.InvalidOID, err
	}
	return typeOID, nil
}

// HostTypeOf returns the host enum type a guest enum type was built from.
func (b *Bridge) HostTypeOf(t guest.LogicalType) (host.OID, error) {
	ids, err := GetMemberIdentifiers(t)
	if err != nil {
		return host.InvalidOID, err
	}
	return b.ResolveHostEnumType(ids)
}

// LoadEnumMembers reads the members of a host enum in canonical sort order.
func (b *Bridge) LoadEnumMembers(typeOID host.OID) ([]host.EnumMember, error) {
	list, err := b.catalog.SearchCacheList(host.EnumTypOIDName, typeOID)
	if err != nil {
		return nil, err
	}

	forms := make([]host.EnumForm, 0, len(list))
	for _, tup := range list {
		forms = append(forms, *tup.Enum)
	}
	if err := b.catalog.ReleaseCacheList(list); err != nil {
		return nil, err
	}

	sort.SliceStable(forms, func(i, j int) bool { return forms[i].SortOrder < forms[j].SortOrder })
	members := make([]host.EnumMember, len(forms))
	for i, f := range forms {
		members[i] = host.EnumMember{OID: f.OID, Label: f.Label}
	}
	return members, nil
}

// EnumType returns the guest type for host enum typeOID, building and
// caching it on first use.
func (b *Bridge) EnumType(typeOID host.OID) (guest.LogicalType, error) {
	if b.cache != nil {
		if t, ok := b.cache.Get(typeOID); ok {
			return t, nil
		}
	}

	isEnum, err := b.IsHostEnum(typeOID)
	if err != nil {
		return guest.LogicalType{}, err
	}
	if !isEnum {
		return guest.LogicalType{}, dberr.New(dberr.InvalidInput, "type with oid %d is not an enum", typeOID).
			In("enumbridge", "EnumType")
	}

	members, err := b.LoadEnumMembers(typeOID)
	if err != nil {
		return guest.LogicalType{}, err
	}
	t := CreateEnumType(members)
	log.Printf("[DEBUG] built guest enum for type %d, %d members, %s positions",
		typeOID, len(members), t.InternalType())

	if b.cache != nil {
		b.cache.Add(typeOID, t)
	}
	return t, nil
}
