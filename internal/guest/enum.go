package guest

import (
	"fmt"
	"math"
)

// EnumTypeInfo is the dictionary behind an ENUM type. The dictionary vector
// may be larger than DictSize; entries past DictSize are not part of the type.
type EnumTypeInfo struct {
	dict      *Vector
	size      int
	positions map[string]int
}

// EnumPhysicalType returns the narrowest unsigned width that can address
// every position of a dictionary of the given size.
func EnumPhysicalType(size int) PhysicalType {
	switch {
	case size <= math.MaxUint8+1:
		return PhysicalUInt8
	case size <= math.MaxUint16+1:
		return PhysicalUInt16
	default:
		return PhysicalUInt32
	}
}

// NewEnumType creates an ENUM type over the first size strings of dict.
// The dictionary order is the enum order.
func NewEnumType(dict *Vector, size int) LogicalType {
	if dict.Type.Physical != PhysicalVarchar {
		panic(fmt.Sprintf("guest: enum dictionary must be VARCHAR, got %s", dict.Type))
	}
	if size > dict.Capacity() {
		panic(fmt.Sprintf("guest: enum size %d exceeds dictionary capacity %d", size, dict.Capacity()))
	}
	info := &EnumTypeInfo{
		dict:      dict,
		size:      size,
		positions: make(map[string]int, size),
	}
	for i := 0; i < size; i++ {
		info.positions[dict.GetString(i)] = i
	}
	return LogicalType{ID: TypeEnum, Physical: EnumPhysicalType(size), Enum: info}
}

// DictSize returns the number of enum members.
func (e *EnumTypeInfo) DictSize() int {
	return e.size
}

// ValuesInsertOrder returns the dictionary vector, including its full allocation.
func (e *EnumTypeInfo) ValuesInsertOrder() *Vector {
	return e.dict
}

// Label returns the string at position pos.
func (e *EnumTypeInfo) Label(pos int) (string, error) {
	if pos < 0 || pos >= e.size {
		return "", fmt.Errorf("enum position %d out of range [0, %d)", pos, e.size)
	}
	return e.dict.GetString(pos), nil
}

// Position returns the position of label, if it is a member.
func (e *EnumTypeInfo) Position(label string) (int, bool) {
	pos, ok := e.positions[label]
	return pos, ok
}
