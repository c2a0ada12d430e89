// Package kv defines the key-value capability shared by the passkey registry
// and the chat history store, plus an in-process implementation.
package kv

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("kv: store closed")

// Store is a durable string-to-string mapping with optional expiry.
// Get reports found=false for missing or expired keys. A zero ttl never expires.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// MemoryStore keeps entries in process memory. Used by the "memory" backend and tests.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a store that sweeps expired entries every cleanup interval.
func NewMemoryStore(cleanup time.Duration) *MemoryStore {
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m == nil || m.cache == nil {
		return "", false, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	raw, ok := m.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	return value, ok, nil
}

func (m *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if m == nil || m.cache == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.cache.Set(key, value, ttl)
	return nil
}
