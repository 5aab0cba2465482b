// Package keyspacetest provides an in-memory keyspace.Session for tests.
// Configure Errors to make individual primitives fail and read Calls to
// count store round-trips.
package keyspacetest

import (
	"context"
	"errors"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/colonyops/keyscope/internal/core/keyspace"
)

var _ keyspace.Session = (*FakeSession)(nil)

type entry struct {
	typ       keyspace.KeyType
	str       string
	list      []string
	set       map[string]struct{}
	zset      []keyspace.ScoredMember
	hash      map[string]string
	streamLen int64
	deadline  time.Time // zero = no expiry
}

// FakeSession is a scriptable in-memory store. The zero value is not
// usable; create instances with New. All methods are safe for concurrent
// use.
type FakeSession struct {
	mu      sync.Mutex
	entries map[string]*entry

	// Errors maps primitive names (e.g. "StringGet", "Scan") to an error
	// every call of that primitive returns.
	Errors map[string]error

	// Calls counts every store round-trip issued, including failed ones.
	Calls int
}

// New creates an empty FakeSession.
func New() *FakeSession {
	return &FakeSession{
		entries: make(map[string]*entry),
		Errors:  make(map[string]error),
	}
}

// op records a round-trip and returns the scripted error for the
// primitive, if any.
func (f *FakeSession) op(name string) error {
	f.Calls++
	return f.Errors[name]
}

func (f *FakeSession) get(key string) (*entry, bool) {
	e, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		delete(f.entries, key)
		return nil, false
	}
	return e, true
}

// SeedString stores a string key.
func (f *FakeSession) SeedString(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = &entry{typ: keyspace.TypeString, str: value}
}

// SeedList stores a list key with elements in the given order.
func (f *FakeSession) SeedList(key string, items ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = &entry{typ: keyspace.TypeList, list: append([]string(nil), items...)}
}

// SeedSet stores a set key.
func (f *FakeSession) SeedSet(key string, members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	f.entries[key] = &entry{typ: keyspace.TypeSet, set: set}
}

// SeedZSet stores a sorted-set key.
func (f *FakeSession) SeedZSet(key string, members ...keyspace.ScoredMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	zset := append([]keyspace.ScoredMember(nil), members...)
	keyspace.SortScoredMembers(zset)
	f.entries[key] = &entry{typ: keyspace.TypeZSet, zset: zset}
}

// SeedHash stores a hash key.
func (f *FakeSession) SeedHash(key string, fields map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash := make(map[string]string, len(fields))
	for k, v := range fields {
		hash[k] = v
	}
	f.entries[key] = &entry{typ: keyspace.TypeHash, hash: hash}
}

// SeedStream stores a stream key that reports the given entry count.
func (f *FakeSession) SeedStream(key string, length int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = &entry{typ: keyspace.TypeStream, streamLen: length}
}

// SeedUnknown stores a key whose type the access layer does not recognize.
func (f *FakeSession) SeedUnknown(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = &entry{typ: keyspace.TypeUnknown}
}

// SeedTTL sets the remaining lifetime of an existing key.
func (f *FakeSession) SeedTTL(key string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[key]; ok {
		e.deadline = time.Now().Add(ttl)
	}
}

// Has reports whether key currently exists, without counting a round-trip.
func (f *FakeSession) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.get(key)
	return ok
}

// Type implements keyspace.Session.
func (f *FakeSession) Type(ctx context.Context, key string) (keyspace.KeyType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("Type"); err != nil {
		return "", err
	}
	e, ok := f.get(key)
	if !ok {
		return "", keyspace.ErrKeyNotFound
	}
	return e.typ, nil
}

// TTL implements keyspace.Session.
func (f *FakeSession) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("TTL"); err != nil {
		return 0, false, err
	}
	e, ok := f.get(key)
	if !ok {
		return 0, false, keyspace.ErrKeyNotFound
	}
	if e.deadline.IsZero() {
		return 0, false, nil
	}
	return time.Until(e.deadline), true, nil
}

// Expire implements keyspace.Session.
func (f *FakeSession) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("Expire"); err != nil {
		return false, err
	}
	e, ok := f.get(key)
	if !ok {
		return false, nil
	}
	e.deadline = time.Now().Add(ttl)
	return true, nil
}

// Persist implements keyspace.Session.
func (f *FakeSession) Persist(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("Persist"); err != nil {
		return false, err
	}
	e, ok := f.get(key)
	if !ok || e.deadline.IsZero() {
		return false, nil
	}
	e.deadline = time.Time{}
	return true, nil
}

// Delete implements keyspace.Session.
func (f *FakeSession) Delete(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("Delete"); err != nil {
		return false, err
	}
	_, ok := f.get(key)
	delete(f.entries, key)
	return ok, nil
}

// Scan implements keyspace.Session. Keys are returned in sorted order so
// tests are deterministic; real stores promise no order at all.
func (f *FakeSession) Scan(ctx context.Context, cursor, pattern string, count int64) ([]string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("Scan"); err != nil {
		return nil, "", err
	}

	var matched []string
	for key := range f.entries {
		if _, ok := f.get(key); !ok {
			continue
		}
		if pattern == "*" || pattern == "" {
			matched = append(matched, key)
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	if start >= len(matched) {
		return nil, "", nil
	}
	end := start + int(count)
	if count < 1 || end > len(matched) {
		end = len(matched)
	}

	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	}
	return matched[start:end], next, nil
}

// StringGet implements keyspace.Session.
func (f *FakeSession) StringGet(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("StringGet"); err != nil {
		return "", err
	}
	e, ok := f.get(key)
	if !ok {
		return "", keyspace.ErrKeyNotFound
	}
	if e.typ != keyspace.TypeString {
		return "", keyspace.ErrWrongType
	}
	return e.str, nil
}

// StringSet implements keyspace.Session.
func (f *FakeSession) StringSet(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("StringSet"); err != nil {
		return err
	}
	f.entries[key] = &entry{typ: keyspace.TypeString, str: value}
	return nil
}

// StringLen implements keyspace.Session.
func (f *FakeSession) StringLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("StringLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeString)
	if err != nil {
		return 0, err
	}
	return int64(len(e.str)), nil
}

// ListRange implements keyspace.Session.
func (f *FakeSession) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ListRange"); err != nil {
		return nil, err
	}
	e, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	if e.typ != keyspace.TypeList {
		return nil, keyspace.ErrWrongType
	}
	lo, hi, ok := keyspace.RangeBounds(len(e.list), start, stop)
	if !ok {
		return nil, nil
	}
	return append([]string(nil), e.list[lo:hi]...), nil
}

// ListPush implements keyspace.Session.
func (f *FakeSession) ListPush(ctx context.Context, key string, values ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ListPush"); err != nil {
		return err
	}
	e, ok := f.get(key)
	if !ok {
		e = &entry{typ: keyspace.TypeList}
		f.entries[key] = e
	}
	if e.typ != keyspace.TypeList {
		return keyspace.ErrWrongType
	}
	e.list = append(e.list, values...)
	return nil
}

// ListSet implements keyspace.Session.
func (f *FakeSession) ListSet(ctx context.Context, key string, index int64, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ListSet"); err != nil {
		return err
	}
	e, err := f.typed(key, keyspace.TypeList)
	if err != nil {
		return err
	}
	if index < 0 {
		index += int64(len(e.list))
	}
	if index < 0 || index >= int64(len(e.list)) {
		return errors.New("index out of range")
	}
	e.list[index] = value
	return nil
}

// ListRemove implements keyspace.Session.
func (f *FakeSession) ListRemove(ctx context.Context, key string, count int64, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ListRemove"); err != nil {
		return err
	}
	e, err := f.typed(key, keyspace.TypeList)
	if err != nil {
		return err
	}
	e.list = keyspace.RemoveOccurrences(e.list, value, count)
	if len(e.list) == 0 {
		delete(f.entries, key)
	}
	return nil
}

// ListLen implements keyspace.Session.
func (f *FakeSession) ListLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ListLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeList)
	if err != nil {
		return 0, err
	}
	return int64(len(e.list)), nil
}

// SetMembers implements keyspace.Session. Members are returned sorted for
// test determinism.
func (f *FakeSession) SetMembers(ctx context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("SetMembers"); err != nil {
		return nil, err
	}
	e, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	if e.typ != keyspace.TypeSet {
		return nil, keyspace.ErrWrongType
	}
	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

// SetAdd implements keyspace.Session.
func (f *FakeSession) SetAdd(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("SetAdd"); err != nil {
		return err
	}
	e, ok := f.get(key)
	if !ok {
		e = &entry{typ: keyspace.TypeSet, set: make(map[string]struct{})}
		f.entries[key] = e
	}
	if e.typ != keyspace.TypeSet {
		return keyspace.ErrWrongType
	}
	for _, m := range members {
		e.set[m] = struct{}{}
	}
	return nil
}

// SetRemove implements keyspace.Session.
func (f *FakeSession) SetRemove(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("SetRemove"); err != nil {
		return err
	}
	e, err := f.typed(key, keyspace.TypeSet)
	if err != nil {
		return err
	}
	for _, m := range members {
		delete(e.set, m)
	}
	if len(e.set) == 0 {
		delete(f.entries, key)
	}
	return nil
}

// SetLen implements keyspace.Session.
func (f *FakeSession) SetLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("SetLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeSet)
	if err != nil {
		return 0, err
	}
	return int64(len(e.set)), nil
}

// ZSetRange implements keyspace.Session.
func (f *FakeSession) ZSetRange(ctx context.Context, key string, start, stop int64) ([]keyspace.ScoredMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ZSetRange"); err != nil {
		return nil, err
	}
	e, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	if e.typ != keyspace.TypeZSet {
		return nil, keyspace.ErrWrongType
	}
	lo, hi, ok := keyspace.RangeBounds(len(e.zset), start, stop)
	if !ok {
		return nil, nil
	}
	return append([]keyspace.ScoredMember(nil), e.zset[lo:hi]...), nil
}

// ZSetAdd implements keyspace.Session.
func (f *FakeSession) ZSetAdd(ctx context.Context, key string, members ...keyspace.ScoredMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ZSetAdd"); err != nil {
		return err
	}
	e, ok := f.get(key)
	if !ok {
		e = &entry{typ: keyspace.TypeZSet}
		f.entries[key] = e
	}
	if e.typ != keyspace.TypeZSet {
		return keyspace.ErrWrongType
	}
	for _, m := range members {
		replaced := false
		for i := range e.zset {
			if e.zset[i].Member == m.Member {
				e.zset[i].Score = m.Score
				replaced = true
				break
			}
		}
		if !replaced {
			e.zset = append(e.zset, m)
		}
	}
	keyspace.SortScoredMembers(e.zset)
	return nil
}

// ZSetRemove implements keyspace.Session.
func (f *FakeSession) ZSetRemove(ctx context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ZSetRemove"); err != nil {
		return err
	}
	e, err := f.typed(key, keyspace.TypeZSet)
	if err != nil {
		return err
	}
	for _, member := range members {
		for i := range e.zset {
			if e.zset[i].Member == member {
				e.zset = append(e.zset[:i], e.zset[i+1:]...)
				break
			}
		}
	}
	if len(e.zset) == 0 {
		delete(f.entries, key)
	}
	return nil
}

// ZSetLen implements keyspace.Session.
func (f *FakeSession) ZSetLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("ZSetLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeZSet)
	if err != nil {
		return 0, err
	}
	return int64(len(e.zset)), nil
}

// HashGetAll implements keyspace.Session.
func (f *FakeSession) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("HashGetAll"); err != nil {
		return nil, err
	}
	e, ok := f.get(key)
	if !ok {
		return map[string]string{}, nil
	}
	if e.typ != keyspace.TypeHash {
		return nil, keyspace.ErrWrongType
	}
	fields := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		fields[k] = v
	}
	return fields, nil
}

// HashSet implements keyspace.Session.
func (f *FakeSession) HashSet(ctx context.Context, key string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("HashSet"); err != nil {
		return err
	}
	e, ok := f.get(key)
	if !ok {
		e = &entry{typ: keyspace.TypeHash, hash: make(map[string]string)}
		f.entries[key] = e
	}
	if e.typ != keyspace.TypeHash {
		return keyspace.ErrWrongType
	}
	for k, v := range fields {
		e.hash[k] = v
	}
	return nil
}

// HashDelete implements keyspace.Session.
func (f *FakeSession) HashDelete(ctx context.Context, key string, fields ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("HashDelete"); err != nil {
		return err
	}
	e, err := f.typed(key, keyspace.TypeHash)
	if err != nil {
		return err
	}
	for _, field := range fields {
		delete(e.hash, field)
	}
	if len(e.hash) == 0 {
		delete(f.entries, key)
	}
	return nil
}

// HashLen implements keyspace.Session.
func (f *FakeSession) HashLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("HashLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeHash)
	if err != nil {
		return 0, err
	}
	return int64(len(e.hash)), nil
}

// StreamLen implements keyspace.Session.
func (f *FakeSession) StreamLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.op("StreamLen"); err != nil {
		return 0, err
	}
	e, err := f.typed(key, keyspace.TypeStream)
	if err != nil {
		return 0, err
	}
	return e.streamLen, nil
}

func (f *FakeSession) typed(key string, want keyspace.KeyType) (*entry, error) {
	e, ok := f.get(key)
	if !ok {
		return nil, keyspace.ErrKeyNotFound
	}
	if e.typ != want {
		return nil, keyspace.ErrWrongType
	}
	return e, nil
}

