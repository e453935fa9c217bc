// Package enumbridge maps host enum types onto guest dictionary-encoded
// enums and converts values between the two in both directions.
//
// A guest enum built here carries the host member identifiers inside its
// own dictionary allocation. The dictionary vector is allocated with spare
// string entries, and the identifiers are packed as uint32s right after the
// last label entry:
//
//	| label 0 | label 1 | ... | label n-1 | id0 id1 id2 id3 | id4 ... |
//	  16 bytes each                          4 ids per 16-byte entry
//
// The identifier of the member at dictionary position i is therefore
// recoverable from the type alone, for as long as the type is alive, and it
// is freed together with the dictionary.
package enumbridge

import (
	"goBridge/internal/dberr"
	"goBridge/internal/guest"
	"goBridge/internal/host"
)

const idsPerEntry = guest.StringEntrySize / 4

// dictSlots returns how many string entries to allocate for n members:
// n labels plus enough entries to hold n uint32 identifiers.
func dictSlots(n int) int {
	slots := n + n/idsPerEntry
	if n%idsPerEntry != 0 {
		slots++
	}
	return slots
}

// memberIDRegion returns the bytes of dict that hold the identifiers of a
// dictionary of dictSize members. It is the only place that knows the layout.
// ok is false when the allocation has no room for them.
func memberIDRegion(dict *guest.Vector, dictSize int) (region []byte, ok bool) {
	start := dictSize * guest.StringEntrySize
	data := dict.Data()
	if len(data) < start+dictSize*4 {
		return nil, false
	}
	return data[start : start+dictSize*4], true
}

// CreateEnumType builds a guest enum whose dictionary order is the order of
// members, which must already be the host's canonical member order.
func CreateEnumType(members []host.EnumMember) guest.LogicalType {
	n := len(members)
	dict := guest.NewVector(guest.Varchar, dictSlots(n))
	region, _ := memberIDRegion(dict, n)
	ids := guest.WrapVector(guest.UInteger, region)
	for i, m := range members {
		dict.SetString(i, m.Label)
		ids.SetUint32(i, uint32(m.OID))
	}
	return guest.NewEnumType(dict, n)
}

// GetMemberIdentifiers returns a view over the host identifiers of t,
// indexed by dictionary position. The view does not copy; it is only
// valid while t is alive.
func GetMemberIdentifiers(t guest.LogicalType) (*guest.Vector, error) {
	if t.ID != guest.TypeEnum || t.Enum == nil {
		return nil, dberr.New(dberr.InternalError, "type %s is not an enum", t).
			In("enumbridge", "GetMemberIdentifiers")
	}
	region, ok := memberIDRegion(t.Enum.ValuesInsertOrder(), t.Enum.DictSize())
	if !ok {
		return nil, dberr.New(dberr.InternalError, "enum type %s carries no member identifiers", t).
			In("enumbridge", "GetMemberIdentifiers")
	}
	return guest.WrapVector(guest.UInteger, region), nil
}

// GetEnumPosition returns the dictionary position of the host member id in t.
// A miss means the cached guest type and the host catalog disagree.
func GetEnumPosition(memberOID host.OID, t guest.LogicalType) (int, error) {
	ids, err := GetMemberIdentifiers(t)
	if err != nil {
		return 0, err
	}
	for i := 0; i < t.Enum.DictSize(); i++ {
		if host.OID(ids.GetUint32(i)) == memberOID {
			return i, nil
		}
	}
	return 0, dberr.New(dberr.NotFound, "could not find enum member oid %d", memberOID).
		In("enumbridge", "GetEnumPosition")
}

// GetGuestEnumPosition reads the position stored in an enum value.
func GetGuestEnumPosition(v guest.Value) (int, error) {
	if v.Type.ID != guest.TypeEnum || v.Type.Enum == nil {
		return 0, dberr.New(dberr.InternalError, "value of type %s is not an enum", v.Type).
			In("enumbridge", "GetGuestEnumPosition")
	}
	switch v.Type.InternalType() {
	case guest.PhysicalUInt8:
		return int(v.U8), nil
	case guest.PhysicalUInt16:
		return int(v.U16), nil
	case guest.PhysicalUInt32:
		return int(v.U32), nil
	default:
		return 0, dberr.New(dberr.InternalError, "invalid physical type %s for enum", v.Type.InternalType()).
			In("enumbridge", "GetGuestEnumPosition")
	}
}
