package keyspace

import (
	"context"
	"errors"
	"fmt"
)

// Duplicator copies one key to another, preserving type, value and
// remaining lifetime. The copy is a read-then-write sequence, not an atomic
// store operation.
type Duplicator struct {
	s       Session
	adapter *Adapter
}

// NewDuplicator creates a Duplicator over a session and its adapter.
func NewDuplicator(s Session, adapter *Adapter) *Duplicator {
	return &Duplicator{s: s, adapter: adapter}
}

// Duplicate reads src fully and writes an equivalent dst, then re-applies
// src's remaining lifetime if it has one. It returns (false, nil) without
// touching dst when src does not exist or holds an unsupported type.
//
// dst keeps its prior contents except where the type-specific write
// replaces them: a string write replaces dst outright whatever its prior
// type, a hash write overwrites fields of a hash dst, and list, set and
// sorted-set writes merge into an existing dst of the same type.
// Duplicating a collection onto a dst of a different type fails with
// ErrWrongType.
func (d *Duplicator) Duplicate(ctx context.Context, src, dst string) (bool, error) {
	t, err := d.s.Type(ctx, src)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("duplicate %q: %w", src, err)
	}
	if !t.Supported() {
		return false, nil
	}

	ttl, hasTTL, err := d.s.TTL(ctx, src)
	if err != nil {
		return false, fmt.Errorf("duplicate %q: %w", src, err)
	}

	snap, err := d.adapter.Read(ctx, src, t)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("duplicate %q: %w", src, err)
	}

	// A collection snapshot with no elements means src vanished between
	// the type check and the read; empty collections cannot exist at the
	// store. Empty strings can.
	if t != TypeString && snap.Len() == 0 {
		return false, nil
	}

	if err := d.adapter.WriteFull(ctx, dst, snap); err != nil {
		return false, fmt.Errorf("duplicate %q to %q: %w", src, dst, err)
	}

	if hasTTL {
		if _, err := d.s.Expire(ctx, dst, ttl); err != nil {
			return false, fmt.Errorf("duplicate %q to %q: set ttl: %w", src, dst, err)
		}
	}

	return true, nil
}
