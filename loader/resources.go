// ABOUTME: The two cached resources: the contact directory of an area and the /me profile
// ABOUTME: Binds the generic loader to the backend client and the session token
package loader

import (
	"context"
	"time"

	"github.com/harperreed/roster/auth"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/models"
)

// ContactsAPI fetches the directory of an area.
type ContactsAPI interface {
	Contacts(ctx context.Context, token string, areaID int) ([]models.Contact, error)
}

// UserInfoAPI fetches the signed-in user's profile.
type UserInfoAPI interface {
	UserInfo(ctx context.Context, token string) (*models.UserInfo, error)
}

// Contacts loads the directory of areaID, cached under auth.ContactsCacheKey.
func Contacts(tc *cache.TimedCache, tokens Tokens, client ContactsAPI, areaID int, maxAge time.Duration, opts ...Option) *Loader[[]models.Contact] {
	fetch := func(ctx context.Context, token string) ([]models.Contact, error) {
		return client.Contacts(ctx, token, areaID)
	}
	return New(auth.ContactsCacheKey, maxAge, tc, tokens, fetch, opts...)
}

// UserInfo loads the profile, cached under auth.UserInfoCacheKey.
func UserInfo(tc *cache.TimedCache, tokens Tokens, client UserInfoAPI, maxAge time.Duration, opts ...Option) *Loader[models.UserInfo] {
	fetch := func(ctx context.Context, token string) (models.UserInfo, error) {
		info, err := client.UserInfo(ctx, token)
		if err != nil {
			return models.UserInfo{}, err
		}
		return *info, nil
	}
	return New(auth.UserInfoCacheKey, maxAge, tc, tokens, fetch, opts...)
}
