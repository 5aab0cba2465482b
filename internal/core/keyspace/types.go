// Package keyspace implements type-polymorphic access to the keys of a
// remote key-value store. Keys are dynamically typed; the package resolves
// per-key metadata without loading full values, streams keyspace
// enumeration and content search lazily, and round-trips keys through a
// self-describing export document.
//
// All operations run against a Session, the contract a connected store
// exposes. Connection lifecycle (connect, auth, database selection,
// reconnects) belongs to the Session implementation, not to this package.
package keyspace

import "time"

// KeyType is the store-reported category of a key's value.
type KeyType string

// Known value types. Stores may report categories outside this list
// (module types and the like); those normalize to TypeUnknown.
const (
	TypeString KeyType = "string"
	TypeList   KeyType = "list"
	TypeSet    KeyType = "set"
	TypeZSet   KeyType = "zset"
	TypeHash   KeyType = "hash"
	TypeStream KeyType = "stream"

	// TypeUnknown covers store-reported types this package does not
	// manipulate. Metadata still resolves for such keys.
	TypeUnknown KeyType = "unknown"
)

// ParseKeyType normalizes a raw store type tag. Unrecognized tags map to
// TypeUnknown so that dispatch sites stay exhaustive.
func ParseKeyType(tag string) KeyType {
	switch KeyType(tag) {
	case TypeString, TypeList, TypeSet, TypeZSet, TypeHash, TypeStream:
		return KeyType(tag)
	default:
		return TypeUnknown
	}
}

// Supported reports whether full value read/write is implemented for the
// type. Streams and unknown types resolve metadata only.
func (t KeyType) Supported() bool {
	switch t {
	case TypeString, TypeList, TypeSet, TypeZSet, TypeHash:
		return true
	case TypeStream, TypeUnknown:
		return false
	default:
		return false
	}
}

// KeyMetadata describes one key at the moment it was resolved. It is
// produced fresh per lookup and is stale as soon as any client mutates the
// key.
type KeyMetadata struct {
	Key string
	// Type is the declared type. A key's type only changes via
	// delete-and-recreate.
	Type KeyType
	// TTL is the remaining lifetime. Nil means the key has no expiry.
	TTL *time.Duration
	// Size is a type-appropriate logical size: character length for
	// strings, element count for lists/sets/streams, member count for
	// sorted sets, field count for hashes. Probe failures degrade to 0.
	Size int64
}

// ScoredMember is one sorted-set member with its score.
type ScoredMember struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// ValueSnapshot is a full read of one key's value. Exactly one variant
// matching Type is populated; the zero value with only Type set stands in
// for types that cannot be read (streams, unknown).
type ValueSnapshot struct {
	Type KeyType

	Str  string
	List []string
	Set  []string
	ZSet []ScoredMember
	Hash map[string]string
}

// StringValue builds a string snapshot.
func StringValue(s string) ValueSnapshot {
	return ValueSnapshot{Type: TypeString, Str: s}
}

// ListValue builds a list snapshot. Element order is the store order.
func ListValue(items []string) ValueSnapshot {
	return ValueSnapshot{Type: TypeList, List: items}
}

// SetValue builds a set snapshot. Member order carries no meaning.
func SetValue(members []string) ValueSnapshot {
	return ValueSnapshot{Type: TypeSet, Set: members}
}

// ZSetValue builds a sorted-set snapshot ordered by ascending score with
// the store's tie-break.
func ZSetValue(members []ScoredMember) ValueSnapshot {
	return ValueSnapshot{Type: TypeZSet, ZSet: members}
}

// HashValue builds a hash snapshot.
func HashValue(fields map[string]string) ValueSnapshot {
	return ValueSnapshot{Type: TypeHash, Hash: fields}
}

// UnsupportedValue builds the opaque placeholder snapshot for a type whose
// values this package does not read.
func UnsupportedValue(t KeyType) ValueSnapshot {
	return ValueSnapshot{Type: t}
}

// Len returns the element count of the populated variant. Strings count
// bytes, mirroring the store's length primitive.
func (v ValueSnapshot) Len() int {
	switch v.Type {
	case TypeString:
		return len(v.Str)
	case TypeList:
		return len(v.List)
	case TypeSet:
		return len(v.Set)
	case TypeZSet:
		return len(v.ZSet)
	case TypeHash:
		return len(v.Hash)
	case TypeStream, TypeUnknown:
		return 0
	default:
		return 0
	}
}
