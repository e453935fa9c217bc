package guest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorStrings(t *testing.T) {
	v := NewVector(Varchar, 4)
	require.Equal(t, 4, v.Capacity())
	require.Len(t, v.Data(), 4*StringEntrySize)

	long := strings.Repeat("x", 40)
	v.SetString(0, "red")
	v.SetString(1, "")
	v.SetString(2, long)
	v.SetString(3, long)

	assert.Equal(t, "red", v.GetString(0))
	assert.Equal(t, "", v.GetString(1))
	assert.Equal(t, long, v.GetString(2))
	assert.Equal(t, long, v.GetString(3))
	assert.Len(t, v.heap.buf, 40, "identical long strings share heap storage")

	exact := strings.Repeat("y", StringInlineLength)
	v.SetString(1, exact)
	assert.Equal(t, exact, v.GetString(1))
	assert.Len(t, v.heap.buf, 40, "inline strings do not use the heap")
}

func TestVectorUint32AndViews(t *testing.T) {
	v := NewVector(UInteger, 3)
	v.SetUint32(0, 17)
	v.SetUint32(2, 1<<31)

	view := WrapVector(UInteger, v.Data()[4:])
	assert.Equal(t, 2, view.Capacity())
	assert.Equal(t, uint32(0), view.GetUint32(0))
	assert.Equal(t, uint32(1<<31), view.GetUint32(1))

	view.SetUint32(0, 99)
	assert.Equal(t, uint32(99), v.GetUint32(1), "views share storage with the owner")
}

func TestVectorMisuse(t *testing.T) {
	assert.Panics(t, func() { NewVector(UInteger, 1).GetString(0) })
	assert.Panics(t, func() { NewVector(Varchar, 1).GetString(1) })
	assert.Panics(t, func() { WrapVector(Varchar, make([]byte, StringEntrySize)).SetString(0, "a") })
	assert.Panics(t, func() { NewVector(LogicalType{}, 1) })
}

func TestEnumPhysicalType(t *testing.T) {
	tbl := []struct {
		size int
		want PhysicalType
	}{
		{1, PhysicalUInt8},
		{256, PhysicalUInt8},
		{257, PhysicalUInt16},
		{65536, PhysicalUInt16},
		{65537, PhysicalUInt32},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, EnumPhysicalType(tt.size), "size %d", tt.size)
	}
}

func TestEnumTypeAndValues(t *testing.T) {
	dict := NewVector(Varchar, 5)
	for i, l := range []string{"red", "green", "blue"} {
		dict.SetString(i, l)
	}
	typ := NewEnumType(dict, 3)

	require.Equal(t, TypeEnum, typ.ID)
	assert.Equal(t, PhysicalUInt8, typ.InternalType())
	assert.Equal(t, 3, typ.Enum.DictSize())
	assert.Equal(t, "ENUM(3)", typ.String())
	assert.Same(t, dict, typ.Enum.ValuesInsertOrder())

	pos, ok := typ.Enum.Position("blue")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
	_, ok = typ.Enum.Position("purple")
	assert.False(t, ok)

	val, err := NewEnumValue(typ, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), val.U8)
	assert.Equal(t, "green", val.String())

	_, err = NewEnumValue(typ, 3)
	assert.Error(t, err)
	_, err = NewEnumValue(Varchar, 0)
	assert.Error(t, err)

	_, err = typ.Enum.Label(-1)
	assert.Error(t, err)

	assert.Panics(t, func() { NewEnumType(dict, 6) })
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", Value{Type: Varchar, Null: true}.String())
	assert.Equal(t, "abc", NewVarcharValue("abc").String())
	assert.Equal(t, "42", NewUIntegerValue(42).String())
	assert.Equal(t, "-3", Value{Type: Integer, I32: -3}.String())
	assert.Equal(t, "true", Value{Type: Boolean, B: true}.String())
}
