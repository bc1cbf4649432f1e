package storage

import (
	"fmt"
	"os"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config holds blob storage connection parameters. ContainerName names the
// Azure container or the S3 bucket depending on Provider.
type Config struct {
	Provider         string `toml:"provider"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Region           string `toml:"region"`
	Endpoint         string `toml:"endpoint"`
	AccessKeyID      string `toml:"access_key_id"`
	SecretAccessKey  string `toml:"secret_access_key"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.ContainerName, overlay.ContainerName)
	mergeString(&c.ConnectionString, overlay.ConnectionString)
	mergeString(&c.AccountURL, overlay.AccountURL)
	mergeString(&c.Region, overlay.Region)
	mergeString(&c.Endpoint, overlay.Endpoint)
	mergeString(&c.AccessKeyID, overlay.AccessKeyID)
	mergeString(&c.SecretAccessKey, overlay.SecretAccessKey)
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "reports"
	}
	if c.Provider == ProviderS3 && c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	envString(&c.Provider, env.Provider)
	envString(&c.ContainerName, env.ContainerName)
	envString(&c.ConnectionString, env.ConnectionString)
	envString(&c.AccountURL, env.AccountURL)
	envString(&c.Region, env.Region)
	envString(&c.Endpoint, env.Endpoint)
	envString(&c.AccessKeyID, env.AccessKeyID)
	envString(&c.SecretAccessKey, env.SecretAccessKey)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required for azure provider")
		}
	case ProviderS3:
		if c.Region == "" {
			return fmt.Errorf("region required for s3 provider")
		}
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return fmt.Errorf("access_key_id and secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("invalid provider %q: must be azure or s3", c.Provider)
	}

	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(dst *string, name string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
