package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goBridge/internal/dberr"
	"goBridge/internal/host"
	"goBridge/internal/host/memhost"
)

func TestCallPassesResultThrough(t *testing.T) {
	res, err := Call("answer", func() int { return 42 })
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}

func TestCallInterceptsHostError(t *testing.T) {
	res, err := Call("lookup", func() *host.Tuple {
		host.Raise("XX001", "cache lookup failed for type %d", 77)
		return &host.Tuple{}
	})
	require.Error(t, err)
	assert.Nil(t, res)

	assert.True(t, errors.Is(err, dberr.HostError))
	var e *dberr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "XX001", e.Code)
	assert.Equal(t, "cache lookup failed for type 77", e.Message)
	assert.Equal(t, "lookup", e.Operation)

	var herr *host.Error
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "XX001", herr.SQLState)
}

func TestCallRepanicsForeignPanics(t *testing.T) {
	assert.PanicsWithValue(t, "not a host error", func() {
		_ = Do("boom", func() { panic("not a host error") })
	})
}

func TestCatalogWrapper(t *testing.T) {
	h := memhost.New()
	cat := NewCatalog(h)

	tup, err := cat.SearchCache(host.TypeOID, 25)
	require.NoError(t, err)
	require.NotNil(t, tup)
	assert.Equal(t, "text", tup.Type.Name)
	require.NoError(t, cat.ReleaseCache(tup))

	// releasing twice raises inside the host and comes back as an error
	err = cat.ReleaseCache(tup)
	require.Error(t, err)
	assert.Equal(t, dberr.HostError, dberr.KindOf(err))

	h.FailNextLookup("catalog is being rebuilt")
	_, err = cat.SearchCacheList(host.EnumTypOIDName, 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog is being rebuilt")

	list, err := cat.SearchCacheList(host.EnumTypOIDName, 25)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, cat.ReleaseCacheList(list))
	assert.Equal(t, 0, h.Pinned())
}
