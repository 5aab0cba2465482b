package keyspace

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// searchElementLimit bounds how many list or sorted-set elements a content
// search examines per key, counted in store order from the front. Matches
// past this prefix are not found; the bound keeps per-key cost fixed
// against unbounded collections. Sets have no stable order to truncate
// consistently, so they are always tested in full.
const searchElementLimit = 100

// Searcher finds keys whose value content contains a substring. It walks
// the whole keyspace and applies a bounded per-type test, so cost scales
// with the keyspace, not with any single collection.
type Searcher struct {
	s        Session
	resolver *Resolver
	count    int64
}

// NewSearcher creates a Searcher. count is the scan page-size hint; values
// < 1 fall back to the default.
func NewSearcher(s Session, resolver *Resolver, count int64) *Searcher {
	if count < 1 {
		count = defaultScanCount
	}
	return &Searcher{s: s, resolver: resolver, count: count}
}

// Search returns a pull-driven sequence of metadata for every key whose
// value contains text, case-insensitively. Per type: strings test the full
// value, hashes test every field name and value, lists and sorted sets
// test only the first searchElementLimit elements, sets test all members.
// Streams and unknown types never match.
//
// Matched keys are re-resolved so the emitted ttl and size are fresh, not
// reused from the match pass. Per-key probe failures skip the key.
// Cancellation behaves exactly as in Enumerator.Enumerate.
func (s *Searcher) Search(ctx context.Context, text string) iter.Seq2[KeyMetadata, error] {
	needle := strings.ToLower(text)

	return func(yield func(KeyMetadata, error) bool) {
		var cursor string
		for {
			if ctx.Err() != nil {
				return
			}

			keys, next, err := s.s.Scan(ctx, cursor, "*", s.count)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				yield(KeyMetadata{}, fmt.Errorf("search scan: %w", err))
				return
			}

			for _, key := range keys {
				if ctx.Err() != nil {
					return
				}

				t, err := s.s.Type(ctx, key)
				if err != nil {
					continue
				}
				ok, err := s.matches(ctx, key, t, needle)
				if err != nil || !ok {
					continue
				}

				meta, err := s.resolver.Resolve(ctx, key)
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

func (s *Searcher) matches(ctx context.Context, key string, t KeyType, needle string) (bool, error) {
	switch t {
	case TypeString:
		v, err := s.s.StringGet(ctx, key)
		if err != nil {
			return false, err
		}
		return contains(v, needle), nil
	case TypeHash:
		fields, err := s.s.HashGetAll(ctx, key)
		if err != nil {
			return false, err
		}
		for name, value := range fields {
			if contains(name, needle) || contains(value, needle) {
				return true, nil
			}
		}
		return false, nil
	case TypeList:
		items, err := s.s.ListRange(ctx, key, 0, searchElementLimit-1)
		if err != nil {
			return false, err
		}
		for _, item := range items {
			if contains(item, needle) {
				return true, nil
			}
		}
		return false, nil
	case TypeZSet:
		members, err := s.s.ZSetRange(ctx, key, 0, searchElementLimit-1)
		if err != nil {
			return false, err
		}
		for _, m := range members {
			if contains(m.Member, needle) {
				return true, nil
			}
		}
		return false, nil
	case TypeSet:
		members, err := s.s.SetMembers(ctx, key)
		if err != nil {
			return false, err
		}
		for _, m := range members {
			if contains(m, needle) {
				return true, nil
			}
		}
		return false, nil
	case TypeStream, TypeUnknown:
		return false, nil
	default:
		return false, nil
	}
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
