// ABOUTME: Charm KV client wrapper implementing the cache key-value contract
// ABOUTME: Batches run in one badger transaction; writes push to the charm server when auto-sync is on

package charm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/roster/cache"
)

// AppName names the charm KV database.
const AppName = "roster"

// DefaultHost is the public charm cloud.
const DefaultHost = "cloud.charm.sh"

// ErrLocalOnly is returned for account operations on a store that was
// opened without a charm server.
var ErrLocalOnly = errors.New("store is not linked to a charm server")

// Client is the charm-backed cache store.
type Client struct {
	db       *badger.DB
	kv       *kv.KV // nil for local-only stores, which never sync
	host     string
	autoSync bool
	mu       sync.RWMutex
}

var (
	_ cache.KV     = (*Client)(nil)
	_ cache.Lister = (*Client)(nil)
)

// Open opens the roster KV database against host. With autoSync every
// write is pushed to the server and remote changes are pulled on open.
func Open(host string, autoSync bool) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}

	// charm reads the server from the environment
	_ = os.Setenv("CHARM_HOST", host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{
		db:       db.DB,
		kv:       db,
		host:     host,
		autoSync: autoSync,
	}

	if autoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close closes the KV store.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv == nil {
		return c.db.Close()
	}
	// charm/kv doesn't expose Close(); badger is cleaned up on process exit
	return nil
}

// Host returns the charm server the store syncs with.
func (c *Client) Host() string { return c.host }

// AutoSync reports whether writes are pushed immediately.
func (c *Client) AutoSync() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autoSync
}

// SetAutoSync switches pushing on write for this process.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the charm account id of this device.
func (c *Client) ID() (string, error) {
	if c.kv == nil {
		return "", ErrLocalOnly
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether the charm server answers for this device.
func (c *Client) IsConnected() bool {
	_, err := c.ID()
	return err == nil
}

// Sync performs a manual sync with the charm server.
func (c *Client) Sync() error {
	if c.kv == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get retrieves a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	values, err := c.GetMany(ctx, key)
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

// GetMany reads all keys in one read transaction. Missing keys are omitted.
func (c *Client) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(keys))
	err := c.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[k] = string(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.SetMany(ctx, map[string]string{key: value})
}

// SetMany stores all pairs in one transaction and syncs if enabled.
func (c *Client) SetMany(ctx context.Context, pairs map[string]string) error {
	return c.update(ctx, func(txn *badger.Txn) error {
		for k, v := range pairs {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Remove deletes a key and syncs if enabled.
func (c *Client) Remove(ctx context.Context, key string) error {
	return c.RemoveMany(ctx, key)
}

// RemoveMany deletes all keys in one transaction. Missing keys are ignored.
func (c *Client) RemoveMany(ctx context.Context, keys ...string) error {
	return c.update(ctx, func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.Update(fn); err != nil {
		return err
	}

	// Sync while still holding lock to avoid race condition
	if c.kv != nil && c.autoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// KeysWithPrefix returns the keys starting with prefix.
func (c *Client) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Reset drops every key: cached data and the directory session.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv == nil {
		return c.db.DropAll()
	}
	return c.kv.Reset()
}
