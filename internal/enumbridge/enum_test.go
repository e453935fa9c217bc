package enumbridge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goBridge/internal/dberr"
	"goBridge/internal/guest"
	"goBridge/internal/host"
)

func makeMembers(n int, firstOID host.OID) []host.EnumMember {
	members := make([]host.EnumMember, n)
	for i := range members {
		members[i] = host.EnumMember{OID: firstOID + host.OID(i), Label: fmt.Sprintf("label_%d", i)}
	}
	return members
}

func TestDictSlots(t *testing.T) {
	tbl := []struct{ n, want int }{
		{0, 0}, {1, 2}, {3, 4}, {4, 5}, {5, 7}, {8, 10}, {257, 257 + 65},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, dictSlots(tt.n), "n=%d", tt.n)
	}
}

func TestCreateEnumTypeRedGreenBlue(t *testing.T) {
	members := []host.EnumMember{{OID: 17, Label: "red"}, {OID: 18, Label: "green"}, {OID: 19, Label: "blue"}}
	typ := CreateEnumType(members)

	require.Equal(t, guest.TypeEnum, typ.ID)
	assert.Equal(t, 3, typ.Enum.DictSize())
	assert.Equal(t, guest.PhysicalUInt8, typ.InternalType())

	pos, err := GetEnumPosition(18, typ)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	ids, err := GetMemberIdentifiers(typ)
	require.NoError(t, err)
	require.Equal(t, 3, ids.Capacity())
	assert.Equal(t, []uint32{17, 18, 19}, []uint32{ids.GetUint32(0), ids.GetUint32(1), ids.GetUint32(2)})

	dict := typ.Enum.ValuesInsertOrder()
	assert.Equal(t, 4, dict.Capacity(), "3 labels plus one entry for the identifiers")
	for i, m := range members {
		assert.Equal(t, m.Label, dict.GetString(i))
	}
}

func TestRoundTripAndIdentityPreservation(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 9, 100, 256, 257, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			members := makeMembers(n, 70000)
			typ := CreateEnumType(members)

			ids, err := GetMemberIdentifiers(typ)
			require.NoError(t, err)
			for i, m := range members {
				pos, err := GetEnumPosition(m.OID, typ)
				require.NoError(t, err)
				require.Equal(t, i, pos)
				require.Equal(t, uint32(m.OID), ids.GetUint32(i))

				label, err := typ.Enum.Label(i)
				require.NoError(t, err)
				require.Equal(t, m.Label, label, "identifiers must not overwrite labels")
			}
		})
	}
}

func TestWidthSelection(t *testing.T) {
	tbl := []struct {
		n    int
		want guest.PhysicalType
	}{
		{3, guest.PhysicalUInt8},
		{256, guest.PhysicalUInt8},
		{257, guest.PhysicalUInt16},
		{65536, guest.PhysicalUInt16},
		{65537, guest.PhysicalUInt32},
	}
	for _, tt := range tbl {
		typ := CreateEnumType(makeMembers(tt.n, 1))
		assert.Equal(t, tt.want, typ.InternalType(), "n=%d", tt.n)

		last := host.OID(tt.n)
		v, err := FromHost(last, typ)
		require.NoError(t, err)
		pos, err := GetGuestEnumPosition(v)
		require.NoError(t, err)
		assert.Equal(t, tt.n-1, pos)
	}
}

func TestGetEnumPositionNotFound(t *testing.T) {
	typ := CreateEnumType([]host.EnumMember{{OID: 17, Label: "red"}})

	_, err := GetEnumPosition(99, typ)
	require.Error(t, err)
	assert.Equal(t, dberr.NotFound, dberr.KindOf(err))
	assert.Contains(t, err.Error(), "99")

	empty := CreateEnumType(nil)
	_, err = GetEnumPosition(17, empty)
	assert.ErrorIs(t, err, dberr.NotFound)

	_, err = GetEnumPosition(17, guest.Varchar)
	assert.ErrorIs(t, err, dberr.InternalError)
}

func TestGetGuestEnumPositionWidths(t *testing.T) {
	typ := CreateEnumType(makeMembers(3, 1))

	for _, tt := range []struct {
		physical guest.PhysicalType
		value    guest.Value
	}{
		{guest.PhysicalUInt8, guest.Value{U8: 2}},
		{guest.PhysicalUInt16, guest.Value{U16: 2}},
		{guest.PhysicalUInt32, guest.Value{U32: 2}},
	} {
		v := tt.value
		v.Type = guest.LogicalType{ID: guest.TypeEnum, Physical: tt.physical, Enum: typ.Enum}
		pos, err := GetGuestEnumPosition(v)
		require.NoError(t, err)
		assert.Equal(t, 2, pos)
	}

	bad := guest.Value{Type: guest.LogicalType{ID: guest.TypeEnum, Physical: guest.PhysicalInt32, Enum: typ.Enum}}
	_, err := GetGuestEnumPosition(bad)
	require.Error(t, err)
	assert.Equal(t, dberr.InternalError, dberr.KindOf(err))

	_, err = GetGuestEnumPosition(guest.NewVarcharValue("red"))
	assert.ErrorIs(t, err, dberr.InternalError)
}

func TestMemberIdentifiersViewDoesNotCopy(t *testing.T) {
	typ := CreateEnumType(makeMembers(5, 100))
	a, err := GetMemberIdentifiers(typ)
	require.NoError(t, err)
	b, err := GetMemberIdentifiers(typ)
	require.NoError(t, err)

	a.SetUint32(4, 999)
	assert.Equal(t, uint32(999), b.GetUint32(4))
	pos, err := GetEnumPosition(999, typ)
	require.NoError(t, err)
	assert.Equal(t, 4, pos)
}

func TestEnumWithoutMemberIdentifiers(t *testing.T) {
	dict := guest.NewVector(guest.Varchar, 3)
	for i, l := range []string{"a", "b", "c"} {
		dict.SetString(i, l)
	}
	typ := guest.NewEnumType(dict, 3)

	_, err := GetMemberIdentifiers(typ)
	require.Error(t, err)
	assert.Equal(t, dberr.InternalError, dberr.KindOf(err))
	assert.Contains(t, err.Error(), "carries no member identifiers")

	_, err = GetEnumPosition(17, typ)
	assert.ErrorIs(t, err, dberr.InternalError)

	v, err := guest.NewEnumValue(typ, 1)
	require.NoError(t, err)
	_, err = ToHost(v)
	assert.ErrorIs(t, err, dberr.InternalError)
}
