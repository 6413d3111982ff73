// ABOUTME: SQLite implementation of the cache key-value contract
// ABOUTME: Batch writes and removals run inside a single transaction
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/roster/cache"
)

// KVStore keeps cache and session entries in the kv_cache table.
type KVStore struct {
	db *sql.DB
}

var (
	_ cache.KV     = (*KVStore)(nil)
	_ cache.Lister = (*KVStore)(nil)
)

func NewKVStore(database *sql.DB) *KVStore {
	return &KVStore{db: database}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *KVStore) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT key, value FROM kv_cache WHERE key IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *KVStore) SetMany(ctx context.Context, pairs map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for k, v := range pairs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO kv_cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, k, v)
			if err != nil {
				return fmt.Errorf("failed to set %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	return s.RemoveMany(ctx, key)
}

func (s *KVStore) RemoveMany(ctx context.Context, keys ...string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_cache WHERE key = ?`, k); err != nil {
				return fmt.Errorf("failed to remove %s: %w", k, err)
			}
		}
		return nil
	})
}

// KeysWithPrefix lists the keys starting with prefix, oldest write first.
func (s *KVStore) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv_cache WHERE substr(key, 1, length(?)) = ? ORDER BY updated_at, key`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *KVStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
