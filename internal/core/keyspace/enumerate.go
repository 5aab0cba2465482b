package keyspace

import (
	"context"
	"fmt"
	"iter"
)

// defaultScanCount is the per-page hint handed to the store's scan
// primitive when the caller configures none.
const defaultScanCount = 500

// Enumerator lazily walks the keyspace under a glob pattern, yielding
// metadata per key. The walk is cursor-based: no full key list is ever held
// in memory, so it is safe over keyspaces of any size.
type Enumerator struct {
	s        Session
	resolver *Resolver
	count    int64
}

// NewEnumerator creates an Enumerator. count is the scan page-size hint;
// values < 1 fall back to the default.
func NewEnumerator(s Session, resolver *Resolver, count int64) *Enumerator {
	if count < 1 {
		count = defaultScanCount
	}
	return &Enumerator{s: s, resolver: resolver, count: count}
}

// Enumerate returns a pull-driven sequence of metadata for every key whose
// name matches pattern, in store-defined order. A scan failure ends the
// sequence with one terminal non-nil error. Keys that fail to resolve (deleted mid-walk, transient
// probe error) are skipped, never surfaced.
//
// Cancelling ctx is a graceful-stop request, not a fault: the sequence is
// checked before every store round-trip and ends without a final element
// and without an error.
func (e *Enumerator) Enumerate(ctx context.Context, pattern string) iter.Seq2[KeyMetadata, error] {
	if pattern == "" {
		pattern = "*"
	}

	return func(yield func(KeyMetadata, error) bool) {
		var cursor string
		for {
			if ctx.Err() != nil {
				return
			}

			keys, next, err := e.s.Scan(ctx, cursor, pattern, e.count)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				yield(KeyMetadata{}, fmt.Errorf("scan %q: %w", pattern, err))
				return
			}

			for _, key := range keys {
				if ctx.Err() != nil {
					return
				}
				meta, err := e.resolver.Resolve(ctx, key)
				if err != nil {
					continue
				}
				if !yield(meta, nil) {
					return
				}
			}

			if next == "" {
				return
			}
			cursor = next
		}
	}
}
