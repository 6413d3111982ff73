// ABOUTME: Error taxonomy of the directory backend client
// ABOUTME: Sentinels for auth/permission/transport failures plus typed server and validation errors
package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means no token or a token the backend rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means a valid token without permission for the area.
	ErrForbidden = errors.New("no permission for this area")
	// ErrMalformed means the response body was not the expected JSON.
	ErrMalformed = errors.New("malformed response from server")
	// ErrUnreachable means the request never produced a response.
	ErrUnreachable = errors.New("server unreachable")
)

// ServerError is any other non-2xx response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.Status)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// ValidationError is a 422 response to a login attempt.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// IsAuthError reports whether err should send the user back to login.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPermissionDenied reports whether err is a missing area permission.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrForbidden)
}
