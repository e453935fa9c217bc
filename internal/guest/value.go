package guest

import (
	"fmt"
	"strconv"
)

// Value is a single guest value. Only the field matching Type.Physical is
// meaningful; the others stay at their zero values.
type Value struct {
	Type LogicalType
	Null bool

	B   bool   // PhysicalBool
	U8  uint8  // PhysicalUInt8
	U16 uint16 // PhysicalUInt16
	U32 uint32 // PhysicalUInt32
	I32 int32  // PhysicalInt32
	S   string // PhysicalVarchar
}

// NewEnumValue returns the value at position pos of enum type t, stored at
// the width t selects.
func NewEnumValue(t LogicalType, pos int) (Value, error) {
	if t.ID != TypeEnum || t.Enum == nil {
		return Value{}, fmt.Errorf("type %s is not an enum", t)
	}
	if pos < 0 || pos >= t.Enum.DictSize() {
		return Value{}, fmt.Errorf("enum position %d out of range [0, %d)", pos, t.Enum.DictSize())
	}
	v := Value{Type: t}
	switch t.Physical {
	case PhysicalUInt8:
		v.U8 = uint8(pos)
	case PhysicalUInt16:
		v.U16 = uint16(pos)
	case PhysicalUInt32:
		v.U32 = uint32(pos)
	default:
		return Value{}, fmt.Errorf("invalid physical type %s for enum", t.Physical)
	}
	return v, nil
}

// NewVarcharValue returns a VARCHAR value.
func NewVarcharValue(s string) Value {
	return Value{Type: Varchar, S: s}
}

// NewUIntegerValue returns a UINTEGER value.
func NewUIntegerValue(x uint32) Value {
	return Value{Type: UInteger, U32: x}
}

func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Type.Physical {
	case PhysicalBool:
		return strconv.FormatBool(v.B)
	case PhysicalUInt8:
		return v.enumOr(uint64(v.U8))
	case PhysicalUInt16:
		return v.enumOr(uint64(v.U16))
	case PhysicalUInt32:
		return v.enumOr(uint64(v.U32))
	case PhysicalInt32:
		return strconv.FormatInt(int64(v.I32), 10)
	case PhysicalVarchar:
		return v.S
	default:
		return "?"
	}
}

func (v Value) enumOr(x uint64) string {
	if v.Type.ID == TypeEnum && v.Type.Enum != nil {
		if label, err := v.Type.Enum.Label(int(x)); err == nil {
			return label
		}
	}
	return strconv.FormatUint(x, 10)
}
