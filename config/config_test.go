// ABOUTME: Tests for configuration loading, persistence and overrides
// ABOUTME: Covers XDG paths, defaults, env overrides, validation and device ID generation
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDataHome(t *testing.T) {
	t.Helper()
	orig := xdg.DataHome
	xdg.DataHome = t.TempDir()
	t.Cleanup(func() { xdg.DataHome = orig })
}

func TestPath(t *testing.T) {
	path := Path()

	assert.True(t, strings.HasPrefix(path, filepath.Join(xdg.DataHome, AppName)), "path should be under XDG data home")
	assert.Equal(t, "config.json", filepath.Base(path))
}

func TestLoad_NotFound(t *testing.T) {
	useTempDataHome(t)

	cfg, err := Load("")
	require.NoError(t, err, "Load should not error when file not found")

	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 13, cfg.AreaID)
	assert.Equal(t, 10*time.Minute, cfg.ContactsWindow())
	assert.Equal(t, 24*time.Hour, cfg.UserInfoWindow())
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Empty(t, cfg.DeviceID)
}

func TestSaveAndLoad(t *testing.T) {
	useTempDataHome(t)

	cfg := Default()
	cfg.Server = "https://kita.example.org/api"
	cfg.Backend = BackendCharm
	cfg.Username = "m.keller"
	cfg.ContactsMaxAge = 5
	require.NoError(t, cfg.Save())

	info, err := os.Stat(cfg.FilePath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://kita.example.org/api", loaded.Server)
	assert.Equal(t, BackendCharm, loaded.Backend)
	assert.Equal(t, "m.keller", loaded.Username)
	assert.Equal(t, 5*time.Minute, loaded.ContactsWindow())
}

func TestLoad_FillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":"https://x.example/api"}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/api", cfg.Server)
	assert.Equal(t, DefaultContactsMaxAge, cfg.ContactsMaxAge)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultCharmHost, cfg.CharmHost)
	assert.False(t, cfg.CharmAutoSync)
	assert.Equal(t, path, cfg.FilePath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	useTempDataHome(t)
	t.Setenv("ROSTER_SERVER", "https://env.example/api")
	t.Setenv("ROSTER_BACKEND", "CHARM")
	t.Setenv("ROSTER_CONTACTS_MAX_AGE", "3")
	t.Setenv("ROSTER_AREA_ID", "not-a-number")
	t.Setenv("ROSTER_CHARM_HOST", "charm.example.org")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/api", cfg.Server)
	assert.Equal(t, BackendCharm, cfg.Backend)
	assert.Equal(t, 3, cfg.ContactsMaxAge)
	assert.Equal(t, DefaultContactsAreaID, cfg.AreaID)
	assert.Equal(t, "charm.example.org", cfg.CharmHost)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Backend = "memory"
	assert.Error(t, cfg.Validate(), "the in-process store is test-only")

	cfg = Default()
	cfg.Server = "kita.example.org"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ContactsMaxAge = -1
	assert.Error(t, cfg.Validate())
}

func TestEnsureDeviceID(t *testing.T) {
	useTempDataHome(t)
	cfg := Default()

	id, err := cfg.EnsureDeviceID()
	require.NoError(t, err)
	_, err = ulid.Parse(id)
	require.NoError(t, err, "device ID should be a valid ULID")

	again, err := cfg.EnsureDeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, id, loaded.DeviceID)
}

func TestGenerateDeviceID_Unique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateDeviceID()
		assert.False(t, ids[id], "device IDs should be unique")
		ids[id] = true
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info")
	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")

	buf.Reset()
	logger = newLogger(&buf, "nonsense")
	logger.Info("hidden")
	logger.Warn("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
