package litestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/colonyops/keyscope/internal/core/keyspace"
)

func encode(container any) ([]byte, error) {
	return json.Marshal(container)
}

func decode[T any](value []byte, key string) (T, error) {
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, nil
}

// loadTyped is load plus a declared-type check.
func loadTyped(ctx context.Context, q queryer, key string, want keyspace.KeyType) (row, error) {
	r, err := load(ctx, q, key)
	if err != nil {
		return row{}, err
	}
	if r.typ != want {
		return row{}, keyspace.ErrWrongType
	}
	return r, nil
}

// loadOrCreate is loadTyped that materializes an absent key as an empty
// container, for the writes that create keys.
func loadOrCreate(ctx context.Context, q queryer, key string, want keyspace.KeyType, empty string) (row, error) {
	r, err := load(ctx, q, key)
	if errors.Is(err, keyspace.ErrKeyNotFound) {
		return row{typ: want, value: []byte(empty)}, nil
	}
	if err != nil {
		return row{}, err
	}
	if r.typ != want {
		return row{}, keyspace.ErrWrongType
	}
	return r, nil
}

func deleteRow(ctx context.Context, q queryer, key string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM keyspace WHERE key = ?`, key)
	return err
}

// StringGet implements keyspace.Session.
func (s *Store) StringGet(ctx context.Context, key string) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeString)
	if err != nil {
		return "", fmt.Errorf("string get %q: %w", key, err)
	}
	return decode[string](r.value, key)
}

// StringSet implements keyspace.Session. The write replaces the key
// whatever its prior type and clears any expiry, the way a plain store
// SET does.
func (s *Store) StringSet(ctx context.Context, key, value string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := save(ctx, s.db.Conn(), key, keyspace.TypeString, value, sql.NullInt64{}); err != nil {
		return fmt.Errorf("string set %q: %w", key, err)
	}
	return nil
}

// StringLen implements keyspace.Session, reporting byte length.
func (s *Store) StringLen(ctx context.Context, key string) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeString)
	if err != nil {
		return 0, fmt.Errorf("string len %q: %w", key, err)
	}
	v, err := decode[string](r.value, key)
	if err != nil {
		return 0, err
	}
	return int64(len(v)), nil
}

// ListRange implements keyspace.Session. A missing key is an empty list.
func (s *Store) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeList)
	if errors.Is(err, keyspace.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list range %q: %w", key, err)
	}
	items, err := decode[[]string](r.value, key)
	if err != nil {
		return nil, err
	}
	lo, hi, ok := keyspace.RangeBounds(len(items), start, stop)
	if !ok {
		return nil, nil
	}
	return items[lo:hi], nil
}

// ListPush implements keyspace.Session.
func (s *Store) ListPush(ctx context.Context, key string, values ...string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadOrCreate(ctx, tx, key, keyspace.TypeList, `[]`)
		if err != nil {
			return fmt.Errorf("list push %q: %w", key, err)
		}
		items, err := decode[[]string](r.value, key)
		if err != nil {
			return err
		}
		return save(ctx, tx, key, keyspace.TypeList, append(items, values...), r.expiresAt)
	})
}

// ListSet implements keyspace.Session.
func (s *Store) ListSet(ctx context.Context, key string, index int64, value string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadTyped(ctx, tx, key, keyspace.TypeList)
		if err != nil {
			return fmt.Errorf("list set %q: %w", key, err)
		}
		items, err := decode[[]string](r.value, key)
		if err != nil {
			return err
		}
		if index < 0 {
			index += int64(len(items))
		}
		if index < 0 || index >= int64(len(items)) {
			return fmt.Errorf("list set %q: index %d out of range", key, index)
		}
		items[index] = value
		return save(ctx, tx, key, keyspace.TypeList, items, r.expiresAt)
	})
}

// ListRemove implements keyspace.Session. Removing the last element
// removes the key; empty collections do not exist.
func (s *Store) ListRemove(ctx context.Context, key string, count int64, value string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadTyped(ctx, tx, key, keyspace.TypeList)
		if err != nil {
			return fmt.Errorf("list remove %q: %w", key, err)
		}
		items, err := decode[[]string](r.value, key)
		if err != nil {
			return err
		}
		items = keyspace.RemoveOccurrences(items, value, count)
		if len(items) == 0 {
			return deleteRow(ctx, tx, key)
		}
		return save(ctx, tx, key, keyspace.TypeList, items, r.expiresAt)
	})
}

// ListLen implements keyspace.Session.
func (s *Store) ListLen(ctx context.Context, key string) (int64, error) {
	return s.containerLen(ctx, key, keyspace.TypeList)
}

// SetMembers implements keyspace.Session. Members come back in sorted
// order because that is how they are stored; callers must not rely on it.
func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeSet)
	if errors.Is(err, keyspace.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set members %q: %w", key, err)
	}
	return decode[[]string](r.value, key)
}

// SetAdd implements keyspace.Session.
func (s *Store) SetAdd(ctx context.Context, key string, members ...string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadOrCreate(ctx, tx, key, keyspace.TypeSet, `[]`)
		if err != nil {
			return fmt.Errorf("set add %q: %w", key, err)
		}
		existing, err := decode[[]string](r.value, key)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(existing)+len(members))
		merged := existing
		for _, m := range existing {
			seen[m] = struct{}{}
		}
		for _, m := range members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			merged = append(merged, m)
		}
		sort.Strings(merged)
		return save(ctx, tx, key, keyspace.TypeSet, merged, r.expiresAt)
	})
}

// SetRemove implements keyspace.Session.
func (s *Store) SetRemove(ctx context.Context, key string, members ...string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadTyped(ctx, tx, key, keyspace.TypeSet)
		if err != nil {
			return fmt.Errorf("set remove %q: %w", key, err)
		}
		existing, err := decode[[]string](r.value, key)
		if err != nil {
			return err
		}
		drop := make(map[string]struct{}, len(members))
		for _, m := range members {
			drop[m] = struct{}{}
		}
		kept := existing[:0]
		for _, m := range existing {
			if _, ok := drop[m]; !ok {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return deleteRow(ctx, tx, key)
		}
		return save(ctx, tx, key, keyspace.TypeSet, kept, r.expiresAt)
	})
}

// SetLen implements keyspace.Session.
func (s *Store) SetLen(ctx context.Context, key string) (int64, error) {
	return s.containerLen(ctx, key, keyspace.TypeSet)
}

// ZSetRange implements keyspace.Session. A missing key is an empty set.
func (s *Store) ZSetRange(ctx context.Context, key string, start, stop int64) ([]keyspace.ScoredMember, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeZSet)
	if errors.Is(err, keyspace.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("zset range %q: %w", key, err)
	}
	members, err := decode[[]keyspace.ScoredMember](r.value, key)
	if err != nil {
		return nil, err
	}
	lo, hi, ok := keyspace.RangeBounds(len(members), start, stop)
	if !ok {
		return nil, nil
	}
	return members[lo:hi], nil
}

// ZSetAdd implements keyspace.Session, adding members or rescoring ones
// that already exist.
func (s *Store) ZSetAdd(ctx context.Context, key string, members ...keyspace.ScoredMember) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadOrCreate(ctx, tx, key, keyspace.TypeZSet, `[]`)
		if err != nil {
			return fmt.Errorf("zset add %q: %w", key, err)
		}
		existing, err := decode[[]keyspace.ScoredMember](r.value, key)
		if err != nil {
			return err
		}
		for _, m := range members {
			replaced := false
			for i := range existing {
				if existing[i].Member == m.Member {
					existing[i].Score = m.Score
					replaced = true
					break
				}
			}
			if !replaced {
				existing = append(existing, m)
			}
		}
		keyspace.SortScoredMembers(existing)
		return save(ctx, tx, key, keyspace.TypeZSet, existing, r.expiresAt)
	})
}

// ZSetRemove implements keyspace.Session.
func (s *Store) ZSetRemove(ctx context.Context, key string, members ...string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadTyped(ctx, tx, key, keyspace.TypeZSet)
		if err != nil {
			return fmt.Errorf("zset remove %q: %w", key, err)
		}
		existing, err := decode[[]keyspace.ScoredMember](r.value, key)
		if err != nil {
			return err
		}
		drop := make(map[string]struct{}, len(members))
		for _, m := range members {
			drop[m] = struct{}{}
		}
		kept := existing[:0]
		for _, m := range existing {
			if _, ok := drop[m.Member]; !ok {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return deleteRow(ctx, tx, key)
		}
		return save(ctx, tx, key, keyspace.TypeZSet, kept, r.expiresAt)
	})
}

// ZSetLen implements keyspace.Session.
func (s *Store) ZSetLen(ctx context.Context, key string) (int64, error) {
	return s.containerLen(ctx, key, keyspace.TypeZSet)
}

// HashGetAll implements keyspace.Session. A missing key is an empty hash.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeHash)
	if errors.Is(err, keyspace.ErrKeyNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hash get %q: %w", key, err)
	}
	return decode[map[string]string](r.value, key)
}

// HashSet implements keyspace.Session.
func (s *Store) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadOrCreate(ctx, tx, key, keyspace.TypeHash, `{}`)
		if err != nil {
			return fmt.Errorf("hash set %q: %w", key, err)
		}
		existing, err := decode[map[string]string](r.value, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			existing[k] = v
		}
		return save(ctx, tx, key, keyspace.TypeHash, existing, r.expiresAt)
	})
}

// HashDelete implements keyspace.Session.
func (s *Store) HashDelete(ctx context.Context, key string, fields ...string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		r, err := loadTyped(ctx, tx, key, keyspace.TypeHash)
		if err != nil {
			return fmt.Errorf("hash delete %q: %w", key, err)
		}
		existing, err := decode[map[string]string](r.value, key)
		if err != nil {
			return err
		}
		for _, f := range fields {
			delete(existing, f)
		}
		if len(existing) == 0 {
			return deleteRow(ctx, tx, key)
		}
		return save(ctx, tx, key, keyspace.TypeHash, existing, r.expiresAt)
	})
}

// HashLen implements keyspace.Session.
func (s *Store) HashLen(ctx context.Context, key string) (int64, error) {
	return s.containerLen(ctx, key, keyspace.TypeHash)
}

// StreamLen implements keyspace.Session. The embedded store never creates
// streams itself; rows of that type only appear through external tooling,
// and their entry count is still reportable.
func (s *Store) StreamLen(ctx context.Context, key string) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, keyspace.TypeStream)
	if err != nil {
		return 0, fmt.Errorf("stream len %q: %w", key, err)
	}
	entries, err := decode[[]json.RawMessage](r.value, key)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

// containerLen reports element counts by decoding the stored container.
// Rows are single values, so a length query cannot beat a decode.
func (s *Store) containerLen(ctx context.Context, key string, t keyspace.KeyType) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	r, err := loadTyped(ctx, s.db.Conn(), key, t)
	if err != nil {
		return 0, fmt.Errorf("len %q: %w", key, err)
	}
	switch t {
	case keyspace.TypeHash:
		fields, err := decode[map[string]string](r.value, key)
		if err != nil {
			return 0, err
		}
		return int64(len(fields)), nil
	case keyspace.TypeZSet:
		members, err := decode[[]keyspace.ScoredMember](r.value, key)
		if err != nil {
			return 0, err
		}
		return int64(len(members)), nil
	default:
		items, err := decode[[]string](r.value, key)
		if err != nil {
			return 0, err
		}
		return int64(len(items)), nil
	}
}
