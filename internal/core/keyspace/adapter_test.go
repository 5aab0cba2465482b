package keyspace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/core/keyspace/keyspacetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_ReadString(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("greeting", "hello")

	snap, err := keyspace.NewAdapter(fs).Read(ctx, "greeting", keyspace.TypeString)
	require.NoError(t, err)
	assert.Equal(t, keyspace.TypeString, snap.Type)
	assert.Equal(t, "hello", snap.Str)
}

func TestAdapter_ReadZSetKeepsOrder(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedZSet("board",
		keyspace.ScoredMember{Member: "carol", Score: 30},
		keyspace.ScoredMember{Member: "alice", Score: 10},
		keyspace.ScoredMember{Member: "bob", Score: 20},
	)

	snap, err := keyspace.NewAdapter(fs).Read(ctx, "board", keyspace.TypeZSet)
	require.NoError(t, err)
	require.Len(t, snap.ZSet, 3)
	assert.Equal(t, "alice", snap.ZSet[0].Member)
	assert.Equal(t, "bob", snap.ZSet[1].Member)
	assert.Equal(t, "carol", snap.ZSet[2].Member)
}

func TestAdapter_ReadUnsupportedSkipsStore(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedStream("events", 42)

	snap, err := keyspace.NewAdapter(fs).Read(ctx, "events", keyspace.TypeStream)
	require.NoError(t, err)
	assert.Equal(t, keyspace.TypeStream, snap.Type)
	assert.Zero(t, snap.Len())
	assert.Equal(t, 0, fs.Calls, "placeholder reads must not issue round-trips")
}

func TestAdapter_WriteFullEmptyCollectionIsNoop(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()

	err := keyspace.NewAdapter(fs).WriteFull(ctx, "empty", keyspace.SetValue(nil))
	require.NoError(t, err)
	assert.False(t, fs.Has("empty"))
	assert.Equal(t, 0, fs.Calls)
}

func TestAdapter_WriteFullUnsupportedType(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()

	err := keyspace.NewAdapter(fs).WriteFull(ctx, "events", keyspace.UnsupportedValue(keyspace.TypeStream))
	assert.ErrorIs(t, err, keyspace.ErrUnsupportedType)
}

func TestAdapter_ProbeSizePerType(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("s", "hello")
	fs.SeedHash("h", map[string]string{"a": "1", "b": "2"})
	fs.SeedStream("x", 7)
	adapter := keyspace.NewAdapter(fs)

	assert.Equal(t, int64(5), adapter.ProbeSize(ctx, "s", keyspace.TypeString))
	assert.Equal(t, int64(2), adapter.ProbeSize(ctx, "h", keyspace.TypeHash))
	assert.Equal(t, int64(7), adapter.ProbeSize(ctx, "x", keyspace.TypeStream))
}

func TestAdapter_ProbeSizeFailsOpen(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedHash("h", map[string]string{"a": "1"})
	fs.Errors["HashLen"] = errors.New("connection reset")

	size := keyspace.NewAdapter(fs).ProbeSize(ctx, "h", keyspace.TypeHash)
	assert.Equal(t, int64(0), size)
}

func TestAdapter_MutatorsRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedHash("user:1", map[string]string{"name": "alice"})
	adapter := keyspace.NewAdapter(fs)

	require.NoError(t, adapter.SetHashField(ctx, "user:1", "email", "alice@example.com"))
	require.NoError(t, adapter.RemoveHashField(ctx, "user:1", "name"))

	fields, err := fs.HashGetAll(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"email": "alice@example.com"}, fields)
}

func TestAdapter_RemoveListItemDropsAllOccurrences(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedList("queue", "a", "b", "a", "c", "a")
	adapter := keyspace.NewAdapter(fs)

	require.NoError(t, adapter.RemoveListItem(ctx, "queue", "a"))

	items, err := fs.ListRange(ctx, "queue", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, items)
}

func TestAdapter_MutatorWrongType(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("s", "plain")

	err := keyspace.NewAdapter(fs).AddSetMember(ctx, "s", "member")
	assert.ErrorIs(t, err, keyspace.ErrWrongType)
}
