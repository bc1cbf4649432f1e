package auth

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds OIDC bearer token verification settings.
type Config struct {
	Enabled    bool   `toml:"enabled"`
	Issuer     string `toml:"issuer"`
	ClientID   string `toml:"client_id"`
	AdminGroup string `toml:"admin_group"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	Issuer     string
	ClientID   string
	AdminGroup string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies; string fields
// only apply when non-empty.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.AdminGroup != "" {
		c.AdminGroup = overlay.AdminGroup
	}
}

func (c *Config) loadDefaults() {
	if c.AdminGroup == "" {
		c.AdminGroup = "meridian-admins"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.AdminGroup != "" {
		if v := os.Getenv(env.AdminGroup); v != "" {
			c.AdminGroup = v
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
