package keyspace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Document is the self-describing external serialization of one key: its
// name, declared type, remaining lifetime in seconds (null when the key has
// no expiry) and a type-dependent value payload. A document reconstructs
// without any context beyond its own type tag.
//
// Payload shapes: string → JSON string; list and set → array of strings;
// zset → array of {member, score} records; hash → object of field to
// value. Unsupported types carry a diagnostic placeholder string instead of
// a value.
type Document struct {
	Key        string          `json:"key"`
	Type       KeyType         `json:"type"`
	TTLSeconds *float64        `json:"ttlSeconds"`
	Value      json.RawMessage `json:"value"`
}

// Encode renders the document as indented UTF-8 JSON, the one wire format
// export and import agree on.
func (d Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document %q: %w", d.Key, err)
	}
	return data, nil
}

// DecodeDocument parses an encoded document. Unparsable input fails here,
// before any store mutation can happen.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// Codec serializes keys to Documents and reconstructs keys from them.
type Codec struct {
	s       Session
	adapter *Adapter
}

// NewCodec creates a Codec over a session and its adapter.
func NewCodec(s Session, adapter *Adapter) *Codec {
	return &Codec{s: s, adapter: adapter}
}

// Export reads key fully and packages type, value and remaining lifetime.
// Keys of unsupported type still export: their value is a diagnostic
// placeholder so the document records that the content was not portable.
func (c *Codec) Export(ctx context.Context, key string) (Document, error) {
	t, err := c.s.Type(ctx, key)
	if err != nil {
		return Document{}, fmt.Errorf("export %q: %w", key, err)
	}

	doc := Document{Key: key, Type: t}

	if ttl, ok, err := c.s.TTL(ctx, key); err == nil && ok {
		secs := ttl.Seconds()
		doc.TTLSeconds = &secs
	}

	if !t.Supported() {
		doc.Value, err = json.Marshal(placeholderValue(t))
		if err != nil {
			return Document{}, fmt.Errorf("export %q: %w", key, err)
		}
		return doc, nil
	}

	snap, err := c.adapter.Read(ctx, key, t)
	if err != nil {
		return Document{}, fmt.Errorf("export %q: %w", key, err)
	}

	doc.Value, err = encodeValue(snap)
	if err != nil {
		return Document{}, fmt.Errorf("export %q: %w", key, err)
	}
	return doc, nil
}

// Import reconstructs the key a document describes, replacing any existing
// key of that name outright; there is no merge. The sequence is validate,
// delete, rebuild, apply ttl.
//
// Only the presence of key and type is validated before the delete. A
// document whose type tag is unknown or whose value payload does not decode
// fails after the old key is already gone; that two-phase hazard is part of
// the documented contract, so callers must treat a false return as
// "the named key may now be absent".
func (c *Codec) Import(ctx context.Context, doc Document) (bool, error) {
	if strings.TrimSpace(doc.Key) == "" {
		return false, fmt.Errorf("%w: missing key", ErrInvalidDocument)
	}
	if doc.Type == "" {
		return false, fmt.Errorf("%w: missing type", ErrInvalidDocument)
	}

	if _, err := c.s.Delete(ctx, doc.Key); err != nil {
		return false, fmt.Errorf("import %q: %w", doc.Key, err)
	}

	if err := c.rebuild(ctx, doc); err != nil {
		return false, fmt.Errorf("import %q: %w", doc.Key, err)
	}

	if doc.TTLSeconds != nil && *doc.TTLSeconds > 0 {
		ttl := time.Duration(*doc.TTLSeconds * float64(time.Second))
		if _, err := c.s.Expire(ctx, doc.Key, ttl); err != nil {
			return false, fmt.Errorf("import %q: set ttl: %w", doc.Key, err)
		}
	}

	return true, nil
}

// rebuild recreates the key's value per the document's type tag. It runs
// after the delete step; failures here leave the key absent.
func (c *Codec) rebuild(ctx context.Context, doc Document) error {
	switch doc.Type {
	case TypeString:
		var v string
		if err := json.Unmarshal(doc.Value, &v); err != nil {
			return fmt.Errorf("%w: string payload: %v", ErrInvalidDocument, err)
		}
		return c.s.StringSet(ctx, doc.Key, v)
	case TypeList:
		var items []string
		if err := json.Unmarshal(doc.Value, &items); err != nil {
			return fmt.Errorf("%w: list payload: %v", ErrInvalidDocument, err)
		}
		if len(items) == 0 {
			return nil
		}
		return c.s.ListPush(ctx, doc.Key, items...)
	case TypeSet:
		var members []string
		if err := json.Unmarshal(doc.Value, &members); err != nil {
			return fmt.Errorf("%w: set payload: %v", ErrInvalidDocument, err)
		}
		if len(members) == 0 {
			return nil
		}
		return c.s.SetAdd(ctx, doc.Key, members...)
	case TypeZSet:
		var members []ScoredMember
		if err := json.Unmarshal(doc.Value, &members); err != nil {
			return fmt.Errorf("%w: zset payload: %v", ErrInvalidDocument, err)
		}
		if len(members) == 0 {
			return nil
		}
		return c.s.ZSetAdd(ctx, doc.Key, members...)
	case TypeHash:
		var fields map[string]string
		if err := json.Unmarshal(doc.Value, &fields); err != nil {
			return fmt.Errorf("%w: hash payload: %v", ErrInvalidDocument, err)
		}
		if len(fields) == 0 {
			return nil
		}
		return c.s.HashSet(ctx, doc.Key, fields)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, doc.Type)
	}
}

func encodeValue(snap ValueSnapshot) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	switch snap.Type {
	case TypeString:
		data, err = json.Marshal(snap.Str)
	case TypeList:
		data, err = json.Marshal(emptyAsSlice(snap.List))
	case TypeSet:
		data, err = json.Marshal(emptyAsSlice(snap.Set))
	case TypeZSet:
		members := snap.ZSet
		if members == nil {
			members = []ScoredMember{}
		}
		data, err = json.Marshal(members)
	case TypeHash:
		fields := snap.Hash
		if fields == nil {
			fields = map[string]string{}
		}
		data, err = json.Marshal(fields)
	default:
		data, err = json.Marshal(placeholderValue(snap.Type))
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// emptyAsSlice keeps nil slices rendering as [] rather than null so the
// payload shape stays stable per type.
func emptyAsSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// placeholderValue is the diagnostic stand-in exported for value types this
// package cannot read.
func placeholderValue(t KeyType) string {
	return fmt.Sprintf("(%s values are not exportable)", t)
}
