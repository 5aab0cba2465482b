// Package litestore implements keyspace.Session against the embedded
// SQLite database. Each key is one row holding its declared type, a JSON
// container value and an optional expiry in unix nanoseconds.
//
// Expiry is lazy: reads treat an expired row as absent and delete it in
// passing, and a periodic sweep removes the rest. Key patterns are
// evaluated by SQLite's GLOB operator, the store's native key-listing
// primitive.
package litestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/data/db"
)

// defaultPageSize is the scan page size used when the caller passes no
// usable count hint.
const defaultPageSize = 100

// Store is the embedded SQLite keyspace backend.
type Store struct {
	db     *db.DB
	closed atomic.Bool
}

var _ keyspace.Session = (*Store)(nil)

// New creates a Store over an open database.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// Close marks the session disconnected. Every subsequent call fails with
// keyspace.ErrNotConnected. The underlying database is owned by the
// caller and stays open.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Store) guard() error {
	if s.closed.Load() {
		return keyspace.ErrNotConnected
	}
	return nil
}

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// row helpers run both inside and outside transactions.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// row is one stored key.
type row struct {
	typ       keyspace.KeyType
	value     []byte
	expiresAt sql.NullInt64
}

// load fetches key, treating an expired row as absent and deleting it in
// passing. Missing keys return keyspace.ErrKeyNotFound.
func load(ctx context.Context, q queryer, key string) (row, error) {
	var (
		r   row
		typ string
	)
	err := q.QueryRowContext(ctx,
		`SELECT type, value, expires_at FROM keyspace WHERE key = ?`, key,
	).Scan(&typ, &r.value, &r.expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return row{}, keyspace.ErrKeyNotFound
	}
	if err != nil {
		return row{}, err
	}

	if r.expiresAt.Valid && r.expiresAt.Int64 < time.Now().UnixNano() {
		_, _ = q.ExecContext(ctx, `DELETE FROM keyspace WHERE key = ?`, key)
		return row{}, keyspace.ErrKeyNotFound
	}

	r.typ = keyspace.ParseKeyType(typ)
	return r, nil
}

// save upserts key with a JSON-encoded container, replacing type, value
// and expiry together.
func save(ctx context.Context, q queryer, key string, typ keyspace.KeyType, container any, expiresAt sql.NullInt64) error {
	data, err := encode(container)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO keyspace (key, type, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			type = excluded.type,
			value = excluded.value,
			expires_at = excluded.expires_at`,
		key, string(typ), data, expiresAt)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Type implements keyspace.Session.
func (s *Store) Type(ctx context.Context, key string) (keyspace.KeyType, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	r, err := load(ctx, s.db.Conn(), key)
	if err != nil {
		return "", fmt.Errorf("type %q: %w", key, err)
	}
	return r.typ, nil
}

// TTL implements keyspace.Session.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	if err := s.guard(); err != nil {
		return 0, false, err
	}
	r, err := load(ctx, s.db.Conn(), key)
	if err != nil {
		return 0, false, fmt.Errorf("ttl %q: %w", key, err)
	}
	if !r.expiresAt.Valid {
		return 0, false, nil
	}
	return time.Until(time.Unix(0, r.expiresAt.Int64)), true, nil
}

// Expire implements keyspace.Session. A non-positive ttl makes the key
// expire immediately.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	now := time.Now()
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE keyspace SET expires_at = ?
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		now.Add(ttl).UnixNano(), key, now.UnixNano())
	if err != nil {
		return false, fmt.Errorf("expire %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expire %q: %w", key, err)
	}
	return n > 0, nil
}

// Persist implements keyspace.Session.
func (s *Store) Persist(ctx context.Context, key string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE keyspace SET expires_at = NULL
		WHERE key = ? AND expires_at IS NOT NULL AND expires_at > ?`,
		key, time.Now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("persist %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("persist %q: %w", key, err)
	}
	return n > 0, nil
}

// Delete implements keyspace.Session. Deleting a key that only exists as
// an expired row reports false and clears the residue.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	res, err := s.db.Conn().ExecContext(ctx, `
		DELETE FROM keyspace
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, time.Now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	if n > 0 {
		return true, nil
	}
	_, _ = s.db.Conn().ExecContext(ctx, `DELETE FROM keyspace WHERE key = ?`, key)
	return false, nil
}

// Scan implements keyspace.Session using keyset pagination: the cursor is
// the last key of the previous page, so the walk holds no server-side
// state and tolerates concurrent mutation.
func (s *Store) Scan(ctx context.Context, cursor, pattern string, count int64) ([]string, string, error) {
	if err := s.guard(); err != nil {
		return nil, "", err
	}
	if pattern == "" {
		pattern = "*"
	}
	if count < 1 {
		count = defaultPageSize
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT key FROM keyspace
		WHERE key > ? AND key GLOB ?
		  AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY key
		LIMIT ?`,
		cursor, pattern, time.Now().UnixNano(), count)
	if err != nil {
		return nil, "", fmt.Errorf("scan %q: %w", pattern, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, "", fmt.Errorf("scan %q: %w", pattern, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("scan %q: %w", pattern, err)
	}

	next := ""
	if int64(len(keys)) == count {
		next = keys[len(keys)-1]
	}
	return keys, next, nil
}

// SweepExpired deletes every row whose expiry has passed and reports how
// many were removed.
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	res, err := s.db.Conn().ExecContext(ctx, `
		DELETE FROM keyspace
		WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	return n, nil
}
