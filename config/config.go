// Package config loads server configuration from an optional YAML file with
// environment variable overrides. Environment variables win so that deployed
// instances can be configured without a file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tntchem/devhub/api"
	"github.com/tntchem/devhub/store"
)

// Config is the top-level server configuration.
type Config struct {
	Server   ServerConfig                        `yaml:"server"`
	Database store.PGConfig                      `yaml:"database"`
	Auth     AuthConfig                          `yaml:"auth"`
	OAuth    map[string]*api.OAuthProviderConfig `yaml:"oauth"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BaseURL         string        `yaml:"base_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds sign-in settings.
type AuthConfig struct {
	LinkSecret    string        `yaml:"link_secret"`
	Issuer        string        `yaml:"issuer"`
	LinkTTL       time.Duration `yaml:"link_ttl"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	RatePerMinute int           `yaml:"rate_per_minute"`
}

// Default returns a Config with sensible local-development defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: store.PGConfig{
			URL: "postgres://localhost:5432/devhub?sslmode=disable",
		},
		Auth: AuthConfig{
			Issuer:        "devhub",
			LinkTTL:       15 * time.Minute,
			SessionTTL:    7 * 24 * time.Hour,
			RatePerMinute: 10,
		},
	}
}

// Load reads configuration from path (skipped when empty) and then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEVHUB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DEVHUB_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DEVHUB_LINK_SECRET"); v != "" {
		c.Auth.LinkSecret = v
	}
	if v := os.Getenv("DEVHUB_ISSUER"); v != "" {
		c.Auth.Issuer = v
	}
	if v := os.Getenv("DEVHUB_AUTH_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Auth.RatePerMinute = n
		}
	}
	if v := os.Getenv("DEVHUB_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.SessionTTL = d
		}
	}
	if v := os.Getenv("DEVHUB_LINK_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.LinkTTL = d
		}
	}
}

// Validate checks the configuration for missing required values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.LinkSecret == "" {
		return errors.New("auth.link_secret is required (set DEVHUB_LINK_SECRET)")
	}
	for name, p := range c.OAuth {
		if p == nil || p.ClientID == "" || p.ClientSecret == "" {
			return fmt.Errorf("oauth.%s: client_id and client_secret are required", name)
		}
		if p.AuthURL == "" || p.TokenURL == "" || p.UserInfoURL == "" {
			return fmt.Errorf("oauth.%s: auth_url, token_url and user_info_url are required", name)
		}
	}
	return nil
}
