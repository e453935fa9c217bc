package enumbridge

import (
	"goBridge/internal/dberr"
	"goBridge/internal/guest"
	"goBridge/internal/host"
)

// FromHost converts a host enum datum (a member OID) into a guest value of type t.
func FromHost(memberOID host.OID, t guest.LogicalType) (guest.Value, error) {
	pos, err := GetEnumPosition(memberOID, t)
	if err != nil {
		return guest.Value{}, err
	}
	v, err := guest.NewEnumValue(t, pos)
	if err != nil {
		return guest.Value{}, dberr.Wrap(err, dberr.InternalError, "cannot build enum value").In("enumbridge", "FromHost")
	}
	return v, nil
}

// ToHost converts a guest enum value into the host member OID it stands for.
func ToHost(v guest.Value) (host.OID, error) {
	pos, err := GetGuestEnumPosition(v)
	if err != nil {
		return host.InvalidOID, err
	}
	if pos >= v.Type.Enum.DictSize() {
		return host.InvalidOID, dberr.New(dberr.InternalError, "enum position %d out of range [0, %d)", pos, v.Type.Enum.DictSize()).
			In("enumbridge", "ToHost")
	}
	ids, err := GetMemberIdentifiers(v.Type)
	if err != nil {
		return host.InvalidOID, err
	}
	return host.OID(ids.GetUint32(pos)), nil
}

// LabelOf returns the label of a guest enum value.
func LabelOf(v guest.Value) (string, error) {
	pos, err := GetGuestEnumPosition(v)
	if err != nil {
		return "", err
	}
	label, err := v.Type.Enum.Label(pos)
	if err != nil {
		return "", dberr.Wrap(err, dberr.InternalError, "enum value has no label").In("enumbridge", "LabelOf")
	}
	return label, nil
}

// FromLabel converts a label into a guest value of type t. An unknown label
// fails with InvalidInput, the way host enum input does.
func FromLabel(label string, t guest.LogicalType) (guest.Value, error) {
	if t.ID != guest.TypeEnum || t.Enum == nil {
		return guest.Value{}, dberr.New(dberr.InternalError, "type %s is not an enum", t).In("enumbridge", "FromLabel")
	}
	pos, ok := t.Enum.Position(label)
	if !ok {
		return guest.Value{}, dberr.New(dberr.InvalidInput, "invalid input value for enum: %q", label).In("enumbridge", "FromLabel")
	}
	v, err := guest.NewEnumValue(t, pos)
	if err != nil {
		return guest.Value{}, dberr.Wrap(err, dberr.InternalError, "cannot build enum value").In("enumbridge", "FromLabel")
	}
	return v, nil
}
