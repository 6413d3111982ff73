// ABOUTME: HTTP client for the directory backend REST API
// ABOUTME: Login, profile, logout, area list and contact list with bearer tokens and request IDs
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/roster/models"
)

const defaultTimeout = 15 * time.Second

// Client talks to one backend.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithDeviceID sends id as X-Device-ID on every request.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for baseURL, e.g. "https://host/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// authorized returns an HTTP client that adds the bearer token.
func (c *Client) authorized(token string) (*http.Client, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.http.Transport},
		Timeout:   c.http.Timeout,
	}, nil
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %v", ErrUnreachable, err)
	}
	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// statusError classifies a non-2xx response. The status decides the kind;
// a JSON body only contributes the message.
func statusError(status int, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	switch status {
	case http.StatusUnauthorized:
		if eb.Message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, eb.Message)
		}
		return ErrUnauthorized
	case http.StatusForbidden:
		if eb.Message != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, eb.Message)
		}
		return ErrForbidden
	case http.StatusUnprocessableEntity:
		msg := eb.Message
		if msg == "" {
			msg = "validation failed"
		}
		return &ValidationError{Message: msg, Fields: eb.Errors}
	}

	msg := eb.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &ServerError{Status: status, Message: msg}
}

// Login exchanges credentials for a token. The username is sent exactly as
// typed; rememberMe asks the backend for a long-lived token.
func (c *Client) Login(ctx context.Context, username, password string, rememberMe bool) (*models.LoginResponse, error) {
	body := map[string]any{
		"username":    username,
		"password":    password,
		"remember_me": rememberMe,
	}
	var resp models.LoginResponse
	if err := c.do(ctx, c.http, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response without token", ErrMalformed)
	}
	return &resp, nil
}

// UserInfo fetches the signed-in account, its employee record and memberships.
func (c *Client) UserInfo(ctx context.Context, token string) (*models.UserInfo, error) {
	hc, err := c.authorized(token)
	if err != nil {
		return nil, err
	}
	var info models.UserInfo
	if err := c.do(ctx, hc, http.MethodGet, "/me", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout invalidates token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	hc, err := c.authorized(token)
	if err != nil {
		return err
	}
	return c.do(ctx, hc, http.MethodPost, "/logout", nil, nil)
}

// Areas lists the areas the user may access.
func (c *Client) Areas(ctx context.Context, token string) ([]models.Area, error) {
	hc, err := c.authorized(token)
	if err != nil {
		return nil, err
	}
	var areas []models.Area
	if err := c.do(ctx, hc, http.MethodGet, "/bereiche", nil, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

// Contacts fetches the full directory of an area.
func (c *Client) Contacts(ctx context.Context, token string, areaID int) ([]models.Contact, error) {
	hc, err := c.authorized(token)
	if err != nil {
		return nil, err
	}
	q := url.Values{"bereich_id": []string{strconv.Itoa(areaID)}}
	var contacts []models.Contact
	if err := c.do(ctx, hc, http.MethodGet, "/contacts?"+q.Encode(), nil, &contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}
