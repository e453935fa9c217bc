package guest

import "fmt"

// LogicalTypeID is the user-facing type of a guest column or value.
type LogicalTypeID int

const (
	TypeInvalid LogicalTypeID = iota
	TypeBoolean
	TypeInteger
	TypeUInteger
	TypeVarchar
	TypeEnum
)

func (id LogicalTypeID) String() string {
	switch id {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeInteger:
		return "INTEGER"
	case TypeUInteger:
		return "UINTEGER"
	case TypeVarchar:
		return "VARCHAR"
	case TypeEnum:
		return "ENUM"
	default:
		return "INVALID"
	}
}

// PhysicalType is how a value is laid out in a vector.
type PhysicalType int

const (
	PhysicalInvalid PhysicalType = iota
	PhysicalBool
	PhysicalUInt8
	PhysicalUInt16
	PhysicalUInt32
	PhysicalInt32
	PhysicalVarchar
)

func (p PhysicalType) String() string {
	switch p {
	case PhysicalBool:
		return "BOOL"
	case PhysicalUInt8:
		return "UINT8"
	case PhysicalUInt16:
		return "UINT16"
	case PhysicalUInt32:
		return "UINT32"
	case PhysicalInt32:
		return "INT32"
	case PhysicalVarchar:
		return "VARCHAR"
	default:
		return "INVALID"
	}
}

// Size returns the width in bytes of one vector entry of this physical type.
func (p PhysicalType) Size() int {
	switch p {
	case PhysicalBool, PhysicalUInt8:
		return 1
	case PhysicalUInt16:
		return 2
	case PhysicalUInt32, PhysicalInt32:
		return 4
	case PhysicalVarchar:
		return StringEntrySize
	default:
		return 0
	}
}

// LogicalType is a guest type handle. Enum is set only for TypeEnum and is
// shared, immutable, between every copy of the handle.
type LogicalType struct {
	ID       LogicalTypeID
	Physical PhysicalType
	Enum     *EnumTypeInfo
}

var (
	Boolean  = LogicalType{ID: TypeBoolean, Physical: PhysicalBool}
	Integer  = LogicalType{ID: TypeInteger, Physical: PhysicalInt32}
	UInteger = LogicalType{ID: TypeUInteger, Physical: PhysicalUInt32}
	Varchar  = LogicalType{ID: TypeVarchar, Physical: PhysicalVarchar}
)

// InternalType returns the physical layout of values of this type.
func (t LogicalType) InternalType() PhysicalType {
	return t.Physical
}

func (t LogicalType) String() string {
	if t.ID == TypeEnum && t.Enum != nil {
		return fmt.Sprintf("ENUM(%d)", t.Enum.DictSize())
	}
	return t.ID.String()
}
