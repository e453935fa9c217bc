package pgcatalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"goBridge/internal/enumbridge"
	"goBridge/internal/guard"
	"goBridge/internal/host"
)

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'red'", quoteLiteral("red"))
	assert.Equal(t, "'it''s'", quoteLiteral("it's"))
	assert.Equal(t, "''", quoteLiteral(""))
}

func TestOpenBadDSN(t *testing.T) {
	_, err := Open(context.Background(), "not a dsn ://", time.Second)
	require.Error(t, err)
}

func setupPostgres(t *testing.T) *Catalog {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env:          map[string]string{"POSTGRES_PASSWORD": "password"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, pg.Terminate(ctx)) })

	pgHost, err := pg.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/postgres?sslmode=disable", pgHost, pgPort.Int())
	c, err := Open(ctx, dsn, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCatalogLivePostgres(t *testing.T) {
	c := setupPostgres(t)

	typOID, err := c.CreateEnum("color", []string{"red", "green", "blue"})
	require.NoError(t, err)
	require.NotEqual(t, host.InvalidOID, typOID)

	// built-in types are visible but are not enums
	int4, ok := c.LookupTypeByName("int4")
	require.True(t, ok)
	tup := c.SearchCache(host.TypeOID, int4)
	require.NotNil(t, tup)
	assert.Equal(t, host.TypTypeBase, tup.Type.TypType)
	c.ReleaseCache(tup)

	b := enumbridge.New(c, nil)
	isEnum, err := b.IsHostEnum(typOID)
	require.NoError(t, err)
	assert.True(t, isEnum)

	gt, err := b.EnumType(typOID)
	require.NoError(t, err)
	require.Equal(t, 3, gt.Enum.DictSize())
	label, err := gt.Enum.Label(1)
	require.NoError(t, err)
	assert.Equal(t, "green", label)

	// every member survives the trip through the guest and back
	members, err := b.LoadEnumMembers(typOID)
	require.NoError(t, err)
	for _, m := range members {
		v, err := enumbridge.FromHost(m.OID, gt)
		require.NoError(t, err)
		back, err := enumbridge.ToHost(v)
		require.NoError(t, err)
		assert.Equal(t, m.OID, back)
	}
	owner, err := b.HostTypeOf(gt)
	require.NoError(t, err)
	assert.Equal(t, typOID, owner)

	var invalidated int
	c.RegisterSyscacheCallback(func(host.CacheID, host.OID) { invalidated++ })
	require.NoError(t, c.AddEnumValue("color", "it's purple"))
	members, err = b.LoadEnumMembers(typOID)
	require.NoError(t, err)
	require.Len(t, members, 4)
	assert.Equal(t, "it's purple", members[3].Label)

	require.NoError(t, c.DropType("color"))
	_, ok = c.LookupTypeByName("color")
	assert.False(t, ok)
	assert.Equal(t, 2, invalidated)
	assert.Equal(t, 0, c.Pinned())
}

func TestCatalogLookupTimeoutRaises(t *testing.T) {
	c := setupPostgres(t)
	c.timeout = time.Nanosecond

	_, err := guard.Call("SearchCache", func() *host.Tuple { return c.SearchCache(host.TypeOID, 23) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), host.StateConnection)
}
