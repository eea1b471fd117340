// Package config provides application configuration.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Addr         string `envconfig:"ADDR" default:":8080"`
	DBDriver     string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DBDSN        string `envconfig:"DB_DSN" default:"urbanluxe.db"`
	JWTSecret    string `envconfig:"JWT_SECRET" default:"super-secret-key-change-me-in-production"`
	ClientOrigin string `envconfig:"CLIENT_ORIGIN" default:""`
	StaticDir    string `envconfig:"STATIC_DIR" default:"static"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("ADDR must not be empty")
	}
	return nil
}
