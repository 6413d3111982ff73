// ABOUTME: Application configuration stored as JSON at XDG paths with .env and environment overrides
// ABOUTME: Holds backend server, cache store selection, freshness windows, logging level and device ID
package config

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
)

const (
	AppName = "roster"

	DefaultServer          = "http://localhost:8082/api"
	DefaultContactsMaxAge  = 10
	DefaultUserInfoMaxAge  = 24
	DefaultTimeoutSeconds  = 15
	DefaultLogLevel        = "warn"
	DefaultContactsAreaID  = 13
	DefaultPageSize        = 10
	DefaultCharmHost       = "cloud.charm.sh"
	BackendSQLite          = "sqlite"
	BackendCharm           = "charm"
	defaultDatabaseFile    = "roster.db"
	defaultConfigFile      = "config.json"
	envPrefix              = "ROSTER_"
	defaultRevealFloorRows = 10
)

// Config stores roster settings.
type Config struct {
	Server         string `json:"server"`
	Backend        string `json:"backend"`
	DBPath         string `json:"db_path"`
	DeviceID       string `json:"device_id"`
	Username       string `json:"username,omitempty"`
	AreaID         int    `json:"area_id"`
	ContactsMaxAge int    `json:"contacts_max_age_minutes"`
	UserInfoMaxAge int    `json:"user_info_max_age_hours"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	PageSize       int    `json:"page_size"`
	RevealFloor    int    `json:"reveal_floor"`
	LogLevel       string `json:"log_level"`

	// Charm backend settings
	CharmHost     string `json:"charm_host,omitempty"`
	CharmAutoSync bool   `json:"charm_auto_sync"`

	path string
}

// Dir returns the XDG-compliant data directory for roster.
func Dir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), defaultConfigFile)
}

// Default returns a config with every field at its default value.
func Default() *Config {
	return &Config{
		Server:         DefaultServer,
		Backend:        BackendSQLite,
		DBPath:         filepath.Join(Dir(), defaultDatabaseFile),
		AreaID:         DefaultContactsAreaID,
		ContactsMaxAge: DefaultContactsMaxAge,
		UserInfoMaxAge: DefaultUserInfoMaxAge,
		TimeoutSeconds: DefaultTimeoutSeconds,
		PageSize:       DefaultPageSize,
		RevealFloor:    defaultRevealFloorRows,
		LogLevel:       DefaultLogLevel,
		CharmHost:      DefaultCharmHost,
		path:           Path(),
	}
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults. A .env file in the working
// directory is loaded first; ROSTER_* variables override file values:
// - ROSTER_SERVER
// - ROSTER_BACKEND
// - ROSTER_DB
// - ROSTER_DEVICE_ID
// - ROSTER_AREA_ID
// - ROSTER_CONTACTS_MAX_AGE (minutes)
// - ROSTER_USER_INFO_MAX_AGE (hours)
// - ROSTER_TIMEOUT (seconds)
// - ROSTER_LOG_LEVEL
// - ROSTER_CHARM_HOST
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		cfg.path = path
	}

	f, err := os.Open(cfg.path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.fillDefaults()
	applyEnvOverrides(cfg)
	return cfg, cfg.Validate()
}

// fillDefaults restores zero values left by older config files.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Server == "" {
		c.Server = d.Server
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.AreaID == 0 {
		c.AreaID = d.AreaID
	}
	if c.ContactsMaxAge == 0 {
		c.ContactsMaxAge = d.ContactsMaxAge
	}
	if c.UserInfoMaxAge == 0 {
		c.UserInfoMaxAge = d.UserInfoMaxAge
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.RevealFloor == 0 {
		c.RevealFloor = d.RevealFloor
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.CharmHost == "" {
		c.CharmHost = d.CharmHost
	}
}

func envInt(name string, dst *int) {
	v := os.Getenv(envPrefix + name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if server := os.Getenv(envPrefix + "SERVER"); server != "" {
		cfg.Server = server
	}
	if backend := os.Getenv(envPrefix + "BACKEND"); backend != "" {
		cfg.Backend = backend
	}
	if dbPath := os.Getenv(envPrefix + "DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if deviceID := os.Getenv(envPrefix + "DEVICE_ID"); deviceID != "" {
		cfg.DeviceID = deviceID
	}
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if host := os.Getenv(envPrefix + "CHARM_HOST"); host != "" {
		cfg.CharmHost = host
	}
	envInt("AREA_ID", &cfg.AreaID)
	envInt("CONTACTS_MAX_AGE", &cfg.ContactsMaxAge)
	envInt("USER_INFO_MAX_AGE", &cfg.UserInfoMaxAge)
	envInt("TIMEOUT", &cfg.TimeoutSeconds)
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend != BackendSQLite && c.Backend != BackendCharm {
		return fmt.Errorf("invalid backend: %s (valid: %s, %s)", c.Backend, BackendSQLite, BackendCharm)
	}
	if c.ContactsMaxAge < 0 || c.UserInfoMaxAge < 0 {
		return fmt.Errorf("cache max age must not be negative")
	}
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("invalid server URL: %s", c.Server)
	}
	return nil
}

// Save writes the config to the path it was loaded from.
func (c *Config) Save() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// FilePath returns where the config is stored.
func (c *Config) FilePath() string { return c.path }

// ContactsWindow is the freshness window of the contacts cache.
func (c *Config) ContactsWindow() time.Duration {
	return time.Duration(c.ContactsMaxAge) * time.Minute
}

// UserInfoWindow is the freshness window of the user-info cache.
func (c *Config) UserInfoWindow() time.Duration {
	return time.Duration(c.UserInfoMaxAge) * time.Hour
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EnsureDeviceID generates and persists a device ID on first use.
func (c *Config) EnsureDeviceID() (string, error) {
	if c.DeviceID != "" {
		return c.DeviceID, nil
	}
	c.DeviceID = GenerateDeviceID()
	if err := c.Save(); err != nil {
		return "", err
	}
	return c.DeviceID, nil
}

// GenerateDeviceID generates a new ULID for device identification.
func GenerateDeviceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
