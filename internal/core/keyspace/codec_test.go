package keyspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/core/keyspace/keyspacetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(fs *keyspacetest.FakeSession) *keyspace.Codec {
	return keyspace.NewCodec(fs, keyspace.NewAdapter(fs))
}

func TestCodec_ExportString(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("motd", "hello")

	doc, err := newTestCodec(fs).Export(ctx, "motd")
	require.NoError(t, err)
	assert.Equal(t, "motd", doc.Key)
	assert.Equal(t, keyspace.TypeString, doc.Type)
	assert.Nil(t, doc.TTLSeconds)
	assert.JSONEq(t, `"hello"`, string(doc.Value))
}

func TestCodec_ExportMissingKey(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()

	_, err := newTestCodec(fs).Export(ctx, "ghost")
	assert.ErrorIs(t, err, keyspace.ErrKeyNotFound)
}

func TestCodec_ExportStreamPlaceholder(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedStream("events", 42)

	doc, err := newTestCodec(fs).Export(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, keyspace.TypeStream, doc.Type)
	assert.JSONEq(t, `"(stream values are not exportable)"`, string(doc.Value))
}

func TestCodec_RoundTripHashWithTTL(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedHash("user:1", map[string]string{"name": "alice", "role": "admin"})
	fs.SeedTTL("user:1", 30*time.Second)
	codec := newTestCodec(fs)

	doc, err := codec.Export(ctx, "user:1")
	require.NoError(t, err)
	require.NotNil(t, doc.TTLSeconds)

	_, err = fs.Delete(ctx, "user:1")
	require.NoError(t, err)

	ok, err := codec.Import(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)

	fields, err := fs.HashGetAll(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "alice", "role": "admin"}, fields)

	ttl, hasTTL, err := fs.TTL(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, hasTTL)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestCodec_RoundTripZSet(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedZSet("board",
		keyspace.ScoredMember{Member: "alice", Score: 12.5},
		keyspace.ScoredMember{Member: "bob", Score: 7},
	)
	codec := newTestCodec(fs)

	doc, err := codec.Export(ctx, "board")
	require.NoError(t, err)

	_, err = fs.Delete(ctx, "board")
	require.NoError(t, err)

	ok, err := codec.Import(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)

	members, err := fs.ZSetRange(ctx, "board", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []keyspace.ScoredMember{
		{Member: "bob", Score: 7},
		{Member: "alice", Score: 12.5},
	}, members)
}

func TestCodec_RoundTripSetModuloOrder(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedSet("tags", "go", "db", "cache")
	codec := newTestCodec(fs)

	doc, err := codec.Export(ctx, "tags")
	require.NoError(t, err)

	_, err = fs.Delete(ctx, "tags")
	require.NoError(t, err)

	ok, err := codec.Import(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)

	members, err := fs.SetMembers(ctx, "tags")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"go", "db", "cache"}, members)
}

func TestCodec_EncodeDecodeStable(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedList("queue", "a", "b")
	codec := newTestCodec(fs)

	doc, err := codec.Export(ctx, "queue")
	require.NoError(t, err)

	data, err := doc.Encode()
	require.NoError(t, err)

	decoded, err := keyspace.DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Key, decoded.Key)
	assert.Equal(t, doc.Type, decoded.Type)
	assert.JSONEq(t, string(doc.Value), string(decoded.Value))
}

func TestCodec_DecodeDocumentMalformed(t *testing.T) {
	_, err := keyspace.DecodeDocument([]byte(`{"key": "x",`))
	assert.ErrorIs(t, err, keyspace.ErrInvalidDocument)
}

func TestCodec_ImportReplacesExistingKey(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedList("k", "old", "items")

	ok, err := newTestCodec(fs).Import(ctx, keyspace.Document{
		Key:   "k",
		Type:  keyspace.TypeString,
		Value: []byte(`"fresh"`),
	})
	require.NoError(t, err)
	require.True(t, ok)

	typ, err := fs.Type(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, keyspace.TypeString, typ)

	v, err := fs.StringGet(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestCodec_ImportMissingTypeFailsBeforeDelete(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("k", "survivor")

	ok, err := newTestCodec(fs).Import(ctx, keyspace.Document{Key: "k"})
	assert.ErrorIs(t, err, keyspace.ErrInvalidDocument)
	assert.False(t, ok)
	assert.True(t, fs.Has("k"), "validation failures must not touch the store")
}

func TestCodec_ImportUnknownTypeFailsAfterDelete(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedString("k", "doomed")

	ok, err := newTestCodec(fs).Import(ctx, keyspace.Document{
		Key:   "k",
		Type:  keyspace.TypeStream,
		Value: []byte(`"(stream values are not exportable)"`),
	})
	assert.ErrorIs(t, err, keyspace.ErrUnsupportedType)
	assert.False(t, ok)
	assert.False(t, fs.Has("k"), "the old key is gone once rebuild starts")
}

func TestCodec_ImportBadPayloadFailsAfterDelete(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	fs.SeedList("k", "doomed")

	ok, err := newTestCodec(fs).Import(ctx, keyspace.Document{
		Key:   "k",
		Type:  keyspace.TypeList,
		Value: []byte(`"not an array"`),
	})
	assert.ErrorIs(t, err, keyspace.ErrInvalidDocument)
	assert.False(t, ok)
	assert.False(t, fs.Has("k"))
}

func TestCodec_ImportIgnoresNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	fs := keyspacetest.New()
	secs := -5.0

	ok, err := newTestCodec(fs).Import(ctx, keyspace.Document{
		Key:        "k",
		Type:       keyspace.TypeString,
		TTLSeconds: &secs,
		Value:      []byte(`"v"`),
	})
	require.NoError(t, err)
	require.True(t, ok)

	_, hasTTL, err := fs.TTL(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hasTTL)
}
