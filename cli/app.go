// ABOUTME: Shared command environment: config, cache store, session, backend client and loaders
// ABOUTME: Opens the configured store (SQLite or Charm KV) and serves records to the MCP and TUI layers
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/auth"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/charm"
	"github.com/harperreed/roster/config"
	"github.com/harperreed/roster/db"
	"github.com/harperreed/roster/loader"
	"github.com/harperreed/roster/models"
)

// App bundles what every command needs.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Store    cache.KV
	Cache    *cache.TimedCache
	Session  *auth.Session
	API      *api.Client
	Contacts *loader.Loader[[]models.Contact]
	UserInfo *loader.Loader[models.UserInfo]

	// Charm is set when the charm backend is the store.
	Charm *charm.Client

	Out io.Writer
	In  io.Reader

	reader *bufio.Reader

	readPassword func() (string, error)
	close        func() error
}

// Open builds the environment for cfg, opening the configured cache store.
func Open(cfg *config.Config) (*App, error) {
	logger := cfg.Logger()

	deviceID, err := cfg.EnsureDeviceID()
	if err != nil {
		logger.Warn("could not persist device id", "err", err)
		deviceID = cfg.DeviceID
	}

	var (
		store  cache.KV
		closer func() error
		cc     *charm.Client
	)
	switch cfg.Backend {
	case config.BackendCharm:
		cc, err = charm.Open(cfg.CharmHost, cfg.CharmAutoSync)
		if err != nil {
			return nil, fmt.Errorf("failed to open charm store: %w", err)
		}
		store, closer = cc, cc.Close
	default:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		store, closer = db.NewKVStore(database), database.Close
	}
	logger.Debug("cache store opened", "backend", cfg.Backend)

	client := api.New(cfg.Server,
		api.WithTimeout(cfg.Timeout()),
		api.WithDeviceID(deviceID),
		api.WithLogger(logger),
	)

	app := newApp(cfg, logger, store, client, closer)
	app.Charm = cc
	return app, nil
}

func newApp(cfg *config.Config, logger *log.Logger, store cache.KV, client *api.Client, closer func() error) *App {
	tc := cache.NewTimedCache(store, cache.WithLogger(logger))
	session := auth.NewSession(store)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Cache:    tc,
		Session:  session,
		API:      client,
		Contacts: loader.Contacts(tc, session, client, cfg.AreaID, cfg.ContactsWindow(), loader.WithLogger(logger)),
		UserInfo: loader.UserInfo(tc, session, client, cfg.UserInfoWindow(), loader.WithLogger(logger)),
		Out:      os.Stdout,
		In:       os.Stdin,

		readPassword: terminalPassword,
		close:        closer,
	}
}

// Close releases the cache store.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Records returns the directory, from cache when fresh. No background
// refresh is started, so the store can be closed as soon as a command ends.
func (a *App) Records(ctx context.Context) ([]models.Contact, error) {
	snap, err := a.Contacts.Get(ctx)
	if err != nil {
		return nil, explain(err)
	}
	a.Logger.Debug("contacts loaded", "source", snap.Source, "count", len(snap.Value))
	return snap.Value, nil
}

// Profile returns the signed-in user's profile, from cache when fresh.
func (a *App) Profile(ctx context.Context) (models.UserInfo, error) {
	snap, err := a.UserInfo.Get(ctx)
	if err != nil {
		return models.UserInfo{}, explain(err)
	}
	return snap.Value, nil
}

// Logout ends the session on the server and always clears it locally,
// together with the cached directory and profile.
func (a *App) Logout(ctx context.Context) error {
	token, err := a.Session.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if token != "" {
		if err := a.API.Logout(ctx, token); err != nil {
			a.Logger.Warn("server logout failed", "err", err)
		}
	}
	if err := a.Session.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// explain adds the next step to errors the user can act on.
func explain(err error) error {
	switch {
	case api.IsAuthError(err):
		return fmt.Errorf("%w: run 'roster login'", err)
	case api.IsPermissionDenied(err):
		return fmt.Errorf("%w: ask an administrator for access to the contact directory", err)
	}
	return err
}

func terminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for password prompt; use --password-stdin")
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readLine reads one line of input without its line ending.
func (a *App) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
