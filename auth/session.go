// ABOUTME: Persisted login session: bearer token, account and token expiry in the key-value store
// ABOUTME: Clearing the session also drops the cached contacts and profile
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/models"
)

const (
	TokenKey     = "auth_token"
	UserKey      = "auth_user"
	ExpiresAtKey = "auth_token_expires_at"

	// ContactsCacheKey is the timed-cache key of the contact directory.
	ContactsCacheKey = "contacts_cache"
	// UserInfoCacheKey is the timed-cache key of the /me profile.
	UserInfoCacheKey = "auth_user_info"
)

// Keys lists every key a logout removes.
func Keys() []string {
	return []string{
		TokenKey,
		UserKey,
		ExpiresAtKey,
		UserInfoCacheKey,
		cache.TimestampKey(UserInfoCacheKey),
		ContactsCacheKey,
		cache.TimestampKey(ContactsCacheKey),
	}
}

// Session reads and writes the login state.
type Session struct {
	kv  cache.KV
	now func() time.Time
}

// NewSession stores the session in kv.
func NewSession(kv cache.KV) *Session {
	return &Session{kv: kv, now: time.Now}
}

// Save persists a successful login in one batch.
func (s *Session) Save(ctx context.Context, resp *models.LoginResponse) error {
	user, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	pairs := map[string]string{
		TokenKey: resp.Token,
		UserKey:  string(user),
	}
	if resp.ExpiresAt != "" {
		pairs[ExpiresAtKey] = resp.ExpiresAt
	}
	if err := s.kv.SetMany(ctx, pairs); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if resp.ExpiresAt == "" {
		// A token without expiry must not inherit an older one.
		if err := s.kv.Remove(ctx, ExpiresAtKey); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return nil
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// Token returns the stored token, or "" when logged out.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.get(ctx, TokenKey)
}

// User returns the stored account, or nil when logged out.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	raw, err := s.get(ctx, UserKey)
	if err != nil || raw == "" {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

// ExpiresAt returns the stored expiry. ok is false when none is stored or
// it cannot be parsed.
func (s *Session) ExpiresAt(ctx context.Context) (t time.Time, ok bool, err error) {
	raw, err := s.get(ctx, ExpiresAtKey)
	if err != nil || raw == "" {
		return time.Time{}, false, err
	}
	t, perr := time.Parse(time.RFC3339Nano, raw)
	if perr != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// IsAuthenticated reports whether a token is stored.
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)
	return token != "", err
}

// IsExpired reports whether the stored expiry lies in the past. A session
// without a known expiry never expires locally.
func (s *Session) IsExpired(ctx context.Context) (bool, error) {
	t, ok, err := s.ExpiresAt(ctx)
	if err != nil || !ok {
		return false, err
	}
	return !s.now().Before(t), nil
}

// Valid returns the token of a live session. An expired session is cleared
// and, like a missing one, reported as api.ErrUnauthorized.
func (s *Session) Valid(ctx context.Context) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", api.ErrUnauthorized
	}
	expired, err := s.IsExpired(ctx)
	if err != nil {
		return "", err
	}
	if expired {
		if err := s.Clear(ctx); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: session expired", api.ErrUnauthorized)
	}
	return token, nil
}

// Clear removes the session and every cached namespace in one batch.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.kv.RemoveMany(ctx, Keys()...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
