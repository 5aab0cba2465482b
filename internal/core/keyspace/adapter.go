package keyspace

import (
	"context"
	"fmt"
)

// Adapter exposes uniform read, write and size-probe operations across the
// value types, plus the narrow per-type mutators used by editing flows.
// Mutators are type-specific: issuing one against a key of another declared
// type is a caller error the store reports as ErrWrongType.
type Adapter struct {
	s Session
}

// NewAdapter creates an Adapter over a session.
func NewAdapter(s Session) *Adapter {
	return &Adapter{s: s}
}

// Read fetches the full value of key as declared type t. Collection types
// are read whole; duplication and export need full fidelity, so no range is
// applied. Streams and unknown types return the opaque placeholder snapshot
// without touching the store.
func (a *Adapter) Read(ctx context.Context, key string, t KeyType) (ValueSnapshot, error) {
	switch t {
	case TypeString:
		v, err := a.s.StringGet(ctx, key)
		if err != nil {
			return ValueSnapshot{}, fmt.Errorf("read string %q: %w", key, err)
		}
		return StringValue(v), nil
	case TypeList:
		items, err := a.s.ListRange(ctx, key, 0, -1)
		if err != nil {
			return ValueSnapshot{}, fmt.Errorf("read list %q: %w", key, err)
		}
		return ListValue(items), nil
	case TypeSet:
		members, err := a.s.SetMembers(ctx, key)
		if err != nil {
			return ValueSnapshot{}, fmt.Errorf("read set %q: %w", key, err)
		}
		return SetValue(members), nil
	case TypeZSet:
		members, err := a.s.ZSetRange(ctx, key, 0, -1)
		if err != nil {
			return ValueSnapshot{}, fmt.Errorf("read zset %q: %w", key, err)
		}
		return ZSetValue(members), nil
	case TypeHash:
		fields, err := a.s.HashGetAll(ctx, key)
		if err != nil {
			return ValueSnapshot{}, fmt.Errorf("read hash %q: %w", key, err)
		}
		return HashValue(fields), nil
	case TypeStream, TypeUnknown:
		return UnsupportedValue(t), nil
	default:
		return UnsupportedValue(TypeUnknown), nil
	}
}

// WriteFull writes a snapshot to key using the snapshot's type-specific
// write: a string write replaces the key outright, a hash write overwrites
// fields of an existing hash, and list pushes and set/zset adds merge into
// an existing key of the same type. Callers wanting replace semantics
// delete the key first.
func (a *Adapter) WriteFull(ctx context.Context, key string, snap ValueSnapshot) error {
	switch snap.Type {
	case TypeString:
		if err := a.s.StringSet(ctx, key, snap.Str); err != nil {
			return fmt.Errorf("write string %q: %w", key, err)
		}
	case TypeList:
		if len(snap.List) == 0 {
			return nil
		}
		if err := a.s.ListPush(ctx, key, snap.List...); err != nil {
			return fmt.Errorf("write list %q: %w", key, err)
		}
	case TypeSet:
		if len(snap.Set) == 0 {
			return nil
		}
		if err := a.s.SetAdd(ctx, key, snap.Set...); err != nil {
			return fmt.Errorf("write set %q: %w", key, err)
		}
	case TypeZSet:
		if len(snap.ZSet) == 0 {
			return nil
		}
		if err := a.s.ZSetAdd(ctx, key, snap.ZSet...); err != nil {
			return fmt.Errorf("write zset %q: %w", key, err)
		}
	case TypeHash:
		if len(snap.Hash) == 0 {
			return nil
		}
		if err := a.s.HashSet(ctx, key, snap.Hash); err != nil {
			return fmt.Errorf("write hash %q: %w", key, err)
		}
	case TypeStream, TypeUnknown:
		return fmt.Errorf("write %q: %w", key, ErrUnsupportedType)
	default:
		return fmt.Errorf("write %q: %w", key, ErrUnsupportedType)
	}
	return nil
}

// ProbeSize reports the logical size of key using the store's length
// primitive for t, never a full value fetch. Probes fail open: any error,
// including the key disappearing or an unknown type, yields 0.
func (a *Adapter) ProbeSize(ctx context.Context, key string, t KeyType) int64 {
	var (
		n   int64
		err error
	)
	switch t {
	case TypeString:
		n, err = a.s.StringLen(ctx, key)
	case TypeList:
		n, err = a.s.ListLen(ctx, key)
	case TypeSet:
		n, err = a.s.SetLen(ctx, key)
	case TypeZSet:
		n, err = a.s.ZSetLen(ctx, key)
	case TypeHash:
		n, err = a.s.HashLen(ctx, key)
	case TypeStream:
		n, err = a.s.StreamLen(ctx, key)
	case TypeUnknown:
		return 0
	default:
		return 0
	}
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SetString overwrites key with a string value.
func (a *Adapter) SetString(ctx context.Context, key, value string) error {
	return a.s.StringSet(ctx, key, value)
}

// PushListItem appends one element to the tail of a list.
func (a *Adapter) PushListItem(ctx context.Context, key, value string) error {
	return a.s.ListPush(ctx, key, value)
}

// SetListItem overwrites the element at index.
func (a *Adapter) SetListItem(ctx context.Context, key string, index int64, value string) error {
	return a.s.ListSet(ctx, key, index, value)
}

// RemoveListItem deletes every occurrence of value from a list.
func (a *Adapter) RemoveListItem(ctx context.Context, key, value string) error {
	return a.s.ListRemove(ctx, key, 0, value)
}

// AddSetMember adds one member to a set.
func (a *Adapter) AddSetMember(ctx context.Context, key, member string) error {
	return a.s.SetAdd(ctx, key, member)
}

// RemoveSetMember removes one member from a set.
func (a *Adapter) RemoveSetMember(ctx context.Context, key, member string) error {
	return a.s.SetRemove(ctx, key, member)
}

// AddZSetMember adds or rescores one sorted-set member.
func (a *Adapter) AddZSetMember(ctx context.Context, key, member string, score float64) error {
	return a.s.ZSetAdd(ctx, key, ScoredMember{Member: member, Score: score})
}

// RemoveZSetMember removes one sorted-set member.
func (a *Adapter) RemoveZSetMember(ctx context.Context, key, member string) error {
	return a.s.ZSetRemove(ctx, key, member)
}

// SetHashField writes one hash field.
func (a *Adapter) SetHashField(ctx context.Context, key, field, value string) error {
	return a.s.HashSet(ctx, key, map[string]string{field: value})
}

// RemoveHashField deletes one hash field.
func (a *Adapter) RemoveHashField(ctx context.Context, key, field string) error {
	return a.s.HashDelete(ctx, key, field)
}
