package keyspace

import (
	"context"
	"time"
)

// Session is the contract a connected store exposes to this package: one
// logical connection issuing request/response round-trips. Every call is
// atomic at the store; multi-call sequences built on top (duplication,
// import) are not. Implementations return ErrKeyNotFound, ErrWrongType and
// ErrNotConnected (wrapped or bare) where those conditions apply.
//
// The embedded SQLite backend in internal/data/litestore implements this
// interface; a networked client would implement the same surface.
type Session interface {
	// Type reports the declared type of key, or ErrKeyNotFound.
	Type(ctx context.Context, key string) (KeyType, error)

	// TTL reports the remaining lifetime of key. ok is false when the key
	// has no expiry set.
	TTL(ctx context.Context, key string) (ttl time.Duration, ok bool, err error)

	// Expire sets the remaining lifetime of key. Returns false when the
	// key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Persist clears any expiry on key. Returns false when the key does
	// not exist or had none.
	Persist(ctx context.Context, key string) (bool, error)

	// Delete removes key. Returns false when the key did not exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Scan walks key names matching a glob pattern incrementally. An empty
	// cursor starts the walk; the returned cursor resumes it, and an empty
	// returned cursor ends it. count is a page-size hint, not a contract.
	// Iteration order is store-defined and unstable under concurrent
	// mutation.
	Scan(ctx context.Context, cursor, pattern string, count int64) (keys []string, next string, err error)

	StringGet(ctx context.Context, key string) (string, error)
	StringSet(ctx context.Context, key, value string) error
	StringLen(ctx context.Context, key string) (int64, error)

	// ListRange returns elements between the start and stop indexes
	// inclusive, negative indexes counting from the tail.
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// ListPush appends values to the tail in argument order, creating the
	// list if absent.
	ListPush(ctx context.Context, key string, values ...string) error
	ListSet(ctx context.Context, key string, index int64, value string) error
	// ListRemove deletes occurrences of value: count > 0 removes from the
	// head, count < 0 from the tail, 0 removes all.
	ListRemove(ctx context.Context, key string, count int64, value string) error
	ListLen(ctx context.Context, key string) (int64, error)

	SetMembers(ctx context.Context, key string) ([]string, error)
	SetAdd(ctx context.Context, key string, members ...string) error
	SetRemove(ctx context.Context, key string, members ...string) error
	SetLen(ctx context.Context, key string) (int64, error)

	// ZSetRange returns members between the start and stop ranks inclusive,
	// ordered by ascending score then member.
	ZSetRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
	ZSetAdd(ctx context.Context, key string, members ...ScoredMember) error
	ZSetRemove(ctx context.Context, key string, members ...string) error
	ZSetLen(ctx context.Context, key string) (int64, error)

	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	// HashSet writes every given field, creating the hash if absent.
	HashSet(ctx context.Context, key string, fields map[string]string) error
	HashDelete(ctx context.Context, key string, fields ...string) error
	HashLen(ctx context.Context, key string) (int64, error)

	// StreamLen reports the entry count of a stream. Streams expose no
	// other operations here.
	StreamLen(ctx context.Context, key string) (int64, error)
}
