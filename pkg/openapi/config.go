package openapi

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds the document metadata. Servers lists absolute origins the API
// is reachable at (e.g. behind a gateway); when empty the document advertises
// the base path relative to whatever origin serves it.
type Config struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Servers     []string `toml:"servers"`
}

// ConfigEnv names the environment variables that override Config fields.
// Servers is read as a comma-separated list.
type ConfigEnv struct {
	Title       string
	Description string
	Servers     string
}

// Finalize applies defaults, then env overrides, then validates server URLs.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Meridian API"
	}
	if c.Description == "" {
		c.Description = "Digital-maturity assessment submission and report generation service."
	}

	if env != nil {
		c.loadEnv(env)
	}

	for _, s := range c.Servers {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server url: %q", s)
		}
	}
	return nil
}

// Merge overwrites fields the overlay sets. A non-empty overlay server list
// replaces the base list.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if len(overlay.Servers) > 0 {
		c.Servers = overlay.Servers
	}
}

// ServerURLs returns the server entries for a document rooted at basePath.
func (c *Config) ServerURLs(basePath string) []string {
	if len(c.Servers) == 0 {
		return []string{basePath}
	}
	urls := make([]string, len(c.Servers))
	for i, s := range c.Servers {
		urls[i] = strings.TrimSuffix(s, "/") + basePath
	}
	return urls
}

func (c *Config) loadEnv(env *ConfigEnv) {
	getenv := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := getenv(env.Title); v != "" {
		c.Title = v
	}
	if v := getenv(env.Description); v != "" {
		c.Description = v
	}
	if v := getenv(env.Servers); v != "" {
		c.Servers = nil
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Servers = append(c.Servers, s)
			}
		}
	}
}
