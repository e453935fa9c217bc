package enumbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goBridge/internal/dberr"
	"goBridge/internal/guest"
	"goBridge/internal/host"
	"goBridge/internal/host/memhost"
)

func newTestBridge(t *testing.T) (*Bridge, *memhost.Host, host.OID) {
	t.Helper()
	h := memhost.New()
	typOID, err := h.CreateEnum("color", []string{"red", "green", "blue"})
	require.NoError(t, err)

	cache, err := NewTypeCache(8)
	require.NoError(t, err)
	cache.Attach(h)
	return New(h, cache), h, typOID
}

func TestIsHostEnum(t *testing.T) {
	b, h, typOID := newTestBridge(t)

	ok, err := b.IsHostEnum(typOID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.IsHostEnum(25) // text
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.IsHostEnum(424242)
	require.NoError(t, err, "a missing catalog entry is not an error")
	assert.False(t, ok)

	h.FailNextLookup("out of shared memory")
	_, err = b.IsHostEnum(typOID)
	require.Error(t, err)
	assert.Equal(t, dberr.HostError, dberr.KindOf(err))

	assert.Equal(t, 0, h.Pinned())
}

func TestEnumTypeBuildsAndCaches(t *testing.T) {
	b, h, typOID := newTestBridge(t)

	typ, err := b.EnumType(typOID)
	require.NoError(t, err)
	assert.Equal(t, 3, typ.Enum.DictSize())
	assert.Equal(t, 1, b.Cache().Len())

	again, err := b.EnumType(typOID)
	require.NoError(t, err)
	assert.Same(t, typ.Enum, again.Enum, "second lookup is served from the cache")

	_, err = b.EnumType(23)
	assert.ErrorIs(t, err, dberr.InvalidInput)
	_, err = b.EnumType(424242)
	assert.ErrorIs(t, err, dberr.InvalidInput)

	assert.Equal(t, 0, h.Pinned())
}

func TestResolveHostEnumType(t *testing.T) {
	b, h, typOID := newTestBridge(t)

	typ, err := b.EnumType(typOID)
	require.NoError(t, err)

	resolved, err := b.HostTypeOf(typ)
	require.NoError(t, err)
	assert.Equal(t, typOID, resolved)

	stale := CreateEnumType([]host.EnumMember{{OID: 555555, Label: "gone"}})
	ids, err := GetMemberIdentifiers(stale)
	require.NoError(t, err)
	_, err = b.ResolveHostEnumType(ids)
	require.Error(t, err)
	assert.Equal(t, dberr.InvalidInput, dberr.KindOf(err))
	assert.Contains(t, err.Error(), "555555")

	_, err = b.ResolveHostEnumType(guest.NewVector(guest.UInteger, 0))
	assert.ErrorIs(t, err, dberr.InvalidInput)

	assert.Equal(t, 0, h.Pinned())
}

func TestCacheInvalidationOnDDL(t *testing.T) {
	b, h, typOID := newTestBridge(t)

	before, err := b.EnumType(typOID)
	require.NoError(t, err)

	require.NoError(t, h.AddEnumValue("color", "purple"))
	assert.Equal(t, 0, b.Cache().Len())

	after, err := b.EnumType(typOID)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Enum.DictSize(), "old type is left untouched")
	assert.Equal(t, 4, after.Enum.DictSize())
	label, err := after.Enum.Label(3)
	require.NoError(t, err)
	assert.Equal(t, "purple", label)

	require.NoError(t, h.DropType("color"))
	assert.Equal(t, 0, b.Cache().Len())

	// a value held across the drop can no longer be resolved
	v, err := FromLabel("red", after)
	require.NoError(t, err)
	_, err = b.HostTypeOf(v.Type)
	assert.ErrorIs(t, err, dberr.InvalidInput)
}

func TestCacheInvalidateByMember(t *testing.T) {
	cache, err := NewTypeCache(0)
	require.NoError(t, err)

	cache.Add(1, CreateEnumType([]host.EnumMember{{OID: 10, Label: "a"}}))
	cache.Add(2, CreateEnumType([]host.EnumMember{{OID: 20, Label: "b"}}))
	cache.Add(3, CreateEnumType([]host.EnumMember{{OID: 30, Label: "c"}}))

	cache.Invalidate(host.EnumOID, 20)
	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(2)
	assert.False(t, ok)

	cache.Invalidate(host.TypeOID, 1)
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate(host.EnumTypOIDName, 0)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewTypeCache(2)
	require.NoError(t, err)

	cache.Add(1, CreateEnumType(makeMembers(1, 10)))
	cache.Add(2, CreateEnumType(makeMembers(1, 20)))
	_, _ = cache.Get(1)
	cache.Add(3, CreateEnumType(makeMembers(1, 30)))

	_, ok := cache.Get(2)
	assert.False(t, ok)
	_, ok = cache.Get(1)
	assert.True(t, ok)
}
