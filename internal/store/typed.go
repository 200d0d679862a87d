package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Typed stores JSON-encoded values of T keyed by user id under a namespace.
type Typed[T any] struct {
	kv        KV
	namespace string
	ttl       time.Duration
}

// NewTyped creates a typed view over kv. Keys look like "<namespace>:<id>".
func NewTyped[T any](kv KV, namespace string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{kv: kv, namespace: namespace, ttl: ttl}
}

func (t *Typed[T]) key(id int64) string {
	return t.namespace + ":" + strconv.FormatInt(id, 10)
}

func (t *Typed[T]) decode(raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s entry: %w", t.namespace, err)
	}
	return v, nil
}

// Get returns the value for id. ok is false when absent.
func (t *Typed[T]) Get(ctx context.Context, id int64) (v T, ok bool, err error) {
	raw, err := t.kv.Get(ctx, t.key(id))
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	v, err = t.decode(raw)
	return v, err == nil, err
}

// Put stores v for id, replacing any previous value.
func (t *Typed[T]) Put(ctx context.Context, id int64, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s entry: %w", t.namespace, err)
	}
	return t.kv.Set(ctx, t.key(id), raw, t.ttl)
}

// Swap stores v and returns the value it replaced.
func (t *Typed[T]) Swap(ctx context.Context, id int64, v T) (prev T, had bool, err error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return prev, false, fmt.Errorf("failed to encode %s entry: %w", t.namespace, err)
	}
	old, err := t.kv.Swap(ctx, t.key(id), raw, t.ttl)
	if err != nil || old == nil {
		return prev, false, err
	}
	prev, err = t.decode(old)
	// The new value is stored even if the old one was unreadable.
	return prev, err == nil, nil
}

// Take atomically removes and returns the value for id.
func (t *Typed[T]) Take(ctx context.Context, id int64) (v T, ok bool, err error) {
	raw, err := t.kv.Take(ctx, t.key(id))
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	v, err = t.decode(raw)
	return v, err == nil, err
}

// Delete removes the value for id.
func (t *Typed[T]) Delete(ctx context.Context, id int64) error {
	return t.kv.Delete(ctx, t.key(id))
}

// All returns every stored value keyed by id. Entries that fail to decode
// are skipped.
func (t *Typed[T]) All(ctx context.Context) (map[int64]T, error) {
	keys, err := t.kv.Keys(ctx, t.namespace+":")
	if err != nil {
		return nil, err
	}
	out := make(map[int64]T, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(k, t.namespace+":"), 10, 64)
		if err != nil {
			continue
		}
		v, ok, err := t.Get(ctx, id)
		if err != nil || !ok {
			continue
		}
		out[id] = v
	}
	return out, nil
}
