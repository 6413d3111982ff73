// ABOUTME: Tests for the backend REST client against an httptest server
// ABOUTME: Covers headers, bearer auth, decoding and the status-to-error mapping
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithHTTPClient(srv.Client()), WithDeviceID("01HDEVICE"))
}

func TestLoginSendsCredentials(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "01HDEVICE", r.Header.Get("X-Device-ID"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, " m.keller", body["username"])
		assert.Equal(t, "geheim", body["password"])
		assert.Equal(t, true, body["remember_me"])

		_, _ = w.Write([]byte(`{"message":"ok","token":"tok","expires_at":"2026-11-01T10:00:00Z","user":{"id":7,"username":"m.keller","name":"Maria","email":"m@example.org"}}`))
	})

	resp, err := c.Login(context.Background(), " m.keller", "geheim", true)
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, 7, resp.User.ID)
	assert.Equal(t, "2026-11-01T10:00:00Z", resp.ExpiresAt)
}

func TestLoginValidationError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Die Angaben sind ungültig","errors":{"password":["zu kurz"],"username":["fehlt"]}}`))
	})

	_, err := c.Login(context.Background(), "", "x", false)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Die Angaben sind ungültig", verr.Message)
	assert.Equal(t, []string{"fehlt"}, verr.Fields["username"])
	assert.Equal(t, "Die Angaben sind ungültig (password: zu kurz; username: fehlt)", verr.Error())
}

func TestLoginWithoutTokenIsMalformed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	_, err := c.Login(context.Background(), "u", "p", false)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestContactsUsesBearerAndArea(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/contacts", r.URL.Path)
		assert.Equal(t, "13", r.URL.Query().Get("bereich_id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":1,"typ":"G","name":"Kindergarten Nord","festnetz":null,"children":[{"id":10,"typ":"P","name":"Maria Keller","mobil":"0171"}]}]`))
	})

	contacts, err := c.Contacts(context.Background(), "tok", 13)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.True(t, contacts[0].IsGroup())
	assert.Empty(t, contacts[0].Landline)
	require.Len(t, contacts[0].Children, 1)
	assert.Equal(t, "0171", contacts[0].Children[0].Mobile)
}

func TestContactsNullBodyIsEmpty(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	contacts, err := c.Contacts(context.Background(), "tok", 13)
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthenticated."}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.True(t, IsAuthError(err))
			assert.Contains(t, err.Error(), "Unauthenticated.")
		}},
		{"forbidden", http.StatusForbidden, `{"message":"Keine Berechtigung"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrForbidden)
			assert.True(t, IsPermissionDenied(err))
		}},
		{"forbidden without body", http.StatusForbidden, ``, func(t *testing.T, err error) {
			assert.Equal(t, ErrForbidden, err)
		}},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, func(t *testing.T, err error) {
			var serr *ServerError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, 500, serr.Status)
			assert.Equal(t, "boom", serr.Message)
		}},
		{"server error html", http.StatusBadGateway, `<html>bad gateway</html>`, func(t *testing.T, err error) {
			var serr *ServerError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "Bad Gateway", serr.Message)
		}},
		{"malformed", http.StatusOK, `<html>`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrMalformed)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Contacts(context.Background(), "tok", 13)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestMissingTokenNeverHitsServer(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Contacts(context.Background(), "", 13)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.UserInfo(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, c.Logout(context.Background(), ""), ErrUnauthorized)
	assert.False(t, called)
}

func TestUserInfoAndAreas(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			_, _ = w.Write([]byte(`{"user":{"id":7,"username":"mk","name":"M K","email":"a@b.c"},"mitarbeiter":{"name":"Keller","vorname":"Maria","beruf":"<b>Erzieherin</b>","kontakt1":null,"mobil_telefon":"0171","email":null},"gruppen":[{"id":1,"name":"Kindergarten Nord"}]}`))
		case "/api/bereiche":
			_, _ = w.Write([]byte(`[{"id":3,"bereich":13,"bezeichnung":"Kontakte","beschreibung":null,"prio":1,"global":false,"rights":{"r":true,"w":false,"a":false}}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	info, err := c.UserInfo(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Maria Keller", info.DisplayName())
	assert.Equal(t, "Erzieherin", info.Occupation())
	assert.Equal(t, "a@b.c", info.DisplayEmail())
	require.Len(t, info.Groups, 1)

	areas, err := c.Areas(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 13, areas[0].Area)
	assert.True(t, areas[0].Rights.Read)
}

func TestLogout(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.Logout(context.Background(), "tok"))
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	_, err := c.Contacts(context.Background(), "tok", 13)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCanceledContext(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Contacts(ctx, "tok", 13)
	assert.True(t, errors.Is(err, context.Canceled))
}
