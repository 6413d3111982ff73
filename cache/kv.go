// ABOUTME: Key-value store contract shared by the cache backends
// ABOUTME: Implemented by the charm KV client and the SQLite kv_cache table
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// KV is a string key-value store. SetMany and RemoveMany apply all pairs
// atomically. GetMany omits missing keys from the result.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, pairs map[string]string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
