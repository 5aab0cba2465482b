package keyspace

import (
	"context"
	"fmt"
)

// Resolver produces per-key metadata without reading full values. Each
// Resolve costs three store round-trips (type, ttl, size probe); no
// combined primitive is assumed.
type Resolver struct {
	s       Session
	adapter *Adapter
}

// NewResolver creates a Resolver over a session and its adapter.
func NewResolver(s Session, adapter *Adapter) *Resolver {
	return &Resolver{s: s, adapter: adapter}
}

// Resolve fetches the declared type, remaining lifetime and logical size of
// key. Only the type lookup can fail the call (including ErrKeyNotFound);
// the ttl and size legs fail open so a key deleted between round-trips
// still resolves, with no expiry and size 0.
func (r *Resolver) Resolve(ctx context.Context, key string) (KeyMetadata, error) {
	t, err := r.s.Type(ctx, key)
	if err != nil {
		return KeyMetadata{}, fmt.Errorf("resolve %q: %w", key, err)
	}

	meta := KeyMetadata{Key: key, Type: t}

	if ttl, ok, err := r.s.TTL(ctx, key); err == nil && ok {
		meta.TTL = &ttl
	}

	meta.Size = r.adapter.ProbeSize(ctx, key, t)
	return meta, nil
}
