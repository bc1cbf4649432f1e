// Package config loads the service configuration from TOML files, an optional
// .env file, and MERIDIAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/database"
	"github.com/JaimeStill/meridian/pkg/openapi"
	"github.com/JaimeStill/meridian/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvMeridianEnv             = "MERIDIAN_ENV"
	EnvMeridianShutdownTimeout = "MERIDIAN_SHUTDOWN_TIMEOUT"
	EnvMeridianVersion         = "MERIDIAN_VERSION"
	EnvMeridianLogLevel        = "MERIDIAN_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "MERIDIAN_DB_HOST",
	Port:            "MERIDIAN_DB_PORT",
	Name:            "MERIDIAN_DB_NAME",
	User:            "MERIDIAN_DB_USER",
	Password:        "MERIDIAN_DB_PASSWORD",
	SSLMode:         "MERIDIAN_DB_SSL_MODE",
	MaxOpenConns:    "MERIDIAN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "MERIDIAN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "MERIDIAN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "MERIDIAN_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "MERIDIAN_STORAGE_PROVIDER",
	ContainerName:    "MERIDIAN_STORAGE_CONTAINER_NAME",
	ConnectionString: "MERIDIAN_STORAGE_CONNECTION_STRING",
	AccountURL:       "MERIDIAN_STORAGE_ACCOUNT_URL",
	Region:           "MERIDIAN_STORAGE_REGION",
	Endpoint:         "MERIDIAN_STORAGE_ENDPOINT",
	AccessKeyID:      "MERIDIAN_STORAGE_ACCESS_KEY_ID",
	SecretAccessKey:  "MERIDIAN_STORAGE_SECRET_ACCESS_KEY",
}

var authEnv = &auth.Env{
	Enabled:    "MERIDIAN_AUTH_ENABLED",
	Issuer:     "MERIDIAN_AUTH_ISSUER",
	ClientID:   "MERIDIAN_AUTH_CLIENT_ID",
	AdminGroup: "MERIDIAN_AUTH_ADMIN_GROUP",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "MERIDIAN_OPENAPI_TITLE",
	Description: "MERIDIAN_OPENAPI_DESCRIPTION",
	Servers:     "MERIDIAN_OPENAPI_SERVERS",
}

// Config is the root configuration for the Meridian service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Reports         ReportsConfig   `toml:"reports"`
	OpenAPI         openapi.Config  `toml:"openapi"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the MERIDIAN_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMeridianEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the .env file and base config (if present), applies any
// environment overlay, and finalizes all values. If no config.toml exists,
// defaults and environment variables provide all configuration. Variables
// already set in the environment take precedence over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Reports.Merge(&overlay.Reports)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Reports.Finalize(); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMeridianShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvMeridianVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvMeridianLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: must be debug, info, warn, or error", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvMeridianEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
