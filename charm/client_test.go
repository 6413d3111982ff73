// ABOUTME: Tests for the charm-backed key-value store
// ABOUTME: Runs against the badger test client, no charm server required

package charm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/roster/cache"
)

func TestClientGetMissingKey(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	_, err := c.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestClientSetManyAndGetMany(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetMany(ctx, map[string]string{
		"contacts_cache":           "[]",
		"contacts_cache.timestamp": "2025-01-01T00:00:00Z",
	}))

	values, err := c.GetMany(ctx, "contacts_cache", "contacts_cache.timestamp", "other")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"contacts_cache":           "[]",
		"contacts_cache.timestamp": "2025-01-01T00:00:00Z",
	}, values)
}

func TestClientRemoveManyIgnoresMissing(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.RemoveMany(ctx, "a", "never-written"))

	keys, err := c.KeysWithPrefix(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "auth_token", "t"))
	require.NoError(t, c.Set(ctx, "auth_user", "{}"))
	require.NoError(t, c.Set(ctx, "contacts_cache", "[]"))

	keys, err := c.KeysWithPrefix(ctx, "auth_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"auth_token", "auth_user"}, keys)
}

func TestClientCanceledContext(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.Set(ctx, "k", "v"))
}

func TestClientBacksTimedCache(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	tc := cache.NewTimedCache(c)
	tc.Store(ctx, "user_info", map[string]string{"name": "Anna"})

	var got map[string]string
	require.True(t, tc.Fetch(ctx, "user_info", time.Minute, &got))
	assert.Equal(t, "Anna", got["name"])
}

func TestClientReset(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	require.NoError(t, c.Reset())

	keys, err := c.KeysWithPrefix(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalOnlyClientHasNoAccount(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	_, err := c.ID()
	assert.ErrorIs(t, err, ErrLocalOnly)
	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Sync(), "local-only stores sync as a no-op")
}

func TestSetAutoSync(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	assert.False(t, c.AutoSync())
	c.SetAutoSync(true)
	assert.True(t, c.AutoSync())
	require.NoError(t, c.Set(context.Background(), "k", "v"), "writes on a local-only store never try to push")
}
