// ABOUTME: Tests for the persisted login session
// ABOUTME: Uses the in-memory key-value store and a fixed clock
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/models"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newSession() (*Session, *cache.Memory) {
	kv := cache.NewMemory()
	s := NewSession(kv)
	s.now = func() time.Time { return fixedNow }
	return s, kv
}

func login(expires string) *models.LoginResponse {
	return &models.LoginResponse{
		Token:     "tok",
		ExpiresAt: expires,
		User:      models.User{ID: 7, Username: "m.keller", Name: "Maria Keller"},
	}
}

func TestSaveAndRead(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession()

	require.NoError(t, s.Save(ctx, login("2026-10-19T12:00:00.000000Z")))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m.keller", user.Username)

	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	expired, err := s.IsExpired(ctx)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestLoggedOut(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession()

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = s.Valid(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestNoExpiryNeverExpires(t *testing.T) {
	ctx := context.Background()
	s, kv := newSession()
	require.NoError(t, kv.Set(ctx, ExpiresAtKey, "2000-01-01T00:00:00Z"))

	require.NoError(t, s.Save(ctx, login("")))

	expired, err := s.IsExpired(ctx)
	require.NoError(t, err)
	assert.False(t, expired)

	token, err := s.Valid(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestUnparsableExpiryIsNotExpired(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession()
	require.NoError(t, s.Save(ctx, login("morgen")))

	expired, err := s.IsExpired(ctx)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestExpiredSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	s, kv := newSession()
	require.NoError(t, s.Save(ctx, login("2026-10-18T12:00:00Z")))
	require.NoError(t, kv.Set(ctx, ContactsCacheKey, "[]"))

	expired, err := s.IsExpired(ctx)
	require.NoError(t, err)
	assert.True(t, expired, "expiry equal to now counts as expired")

	_, err = s.Valid(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, kv.Keys())
}

func TestClearRemovesCaches(t *testing.T) {
	ctx := context.Background()
	s, kv := newSession()
	require.NoError(t, s.Save(ctx, login("2026-10-19T12:00:00Z")))

	tc := cache.NewTimedCache(kv)
	tc.Store(ctx, ContactsCacheKey, []models.Contact{{ID: 1, Type: models.KindGroup, Name: "Hort"}})
	tc.Store(ctx, UserInfoCacheKey, models.UserInfo{User: models.User{ID: 7}})
	require.NoError(t, kv.Set(ctx, "unrelated", "x"))

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []string{"unrelated"}, kv.Keys())
}
