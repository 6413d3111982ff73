// ABOUTME: Tests for the SQLite key-value store
// ABOUTME: Covers batch atomicity, upserts and missing-key handling
package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/roster/cache"
)

func TestKVStoreGetMissing(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewKVStore(database)

	_, err := store.Get(context.Background(), "auth_token")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestKVStoreSetManyUpserts(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewKVStore(database)
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.Set(ctx, "a", "3"))

	values, err := store.GetMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, values)
}

func TestKVStoreGetManyNoKeys(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	values, err := NewKVStore(database).GetMany(context.Background())
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestKVStoreRemoveMany(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewKVStore(database)
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, store.RemoveMany(ctx, "a", "b", "missing"))

	keys, err := store.KeysWithPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys)
}

func TestKVStoreSetManyRollsBackOnCancel(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewKVStore(database)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))

	keys, err := store.KeysWithPrefix(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKVStoreBacksTimedCache(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	tc := cache.NewTimedCache(NewKVStore(database))
	tc.Store(ctx, "contacts_cache", []int{1, 2, 3})

	var got []int
	require.True(t, tc.Fetch(ctx, "contacts_cache", time.Minute, &got))
	assert.Equal(t, []int{1, 2, 3}, got)

	tc.Evict(ctx, "contacts_cache")
	assert.False(t, tc.Fetch(ctx, "contacts_cache", time.Minute, &got))
}

func TestKVStoreKeysWithPrefix(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewKVStore(database)
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string]string{
		"auth_token":               "t",
		"auth_user_info":           "{}",
		"contacts_cache":           "[]",
		"contacts_cache.timestamp": "2025-01-01T00:00:00Z",
	}))

	keys, err := store.KeysWithPrefix(ctx, "contacts_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"contacts_cache", "contacts_cache.timestamp"}, keys)

	keys, err = store.KeysWithPrefix(ctx, "auth_%")
	require.NoError(t, err)
	assert.Empty(t, keys, "prefix is matched literally")
}
