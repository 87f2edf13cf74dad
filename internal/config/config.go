// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package config loads Gatewarden configuration from an optional YAML file,
// command-line flags, and the environment. Precedence, lowest to highest:
// defaults, config file, flags. DATABASE_URL from the environment fills the
// database URL only when neither file nor flag set one.
package config

import (
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds all runtime configuration.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`
	MetricsAddr string `koanf:"metrics_addr"`

	// SessionKey is the hex-encoded HMAC key for session tokens.
	SessionKey string        `koanf:"session_key"`
	SessionTTL time.Duration `koanf:"session_ttl"`

	// Argon2id work factor. Zero values fall back to the hasher defaults.
	HasherTime    uint32 `koanf:"hasher_time"`
	HasherMemory  uint32 `koanf:"hasher_memory"`
	HasherThreads uint8  `koanf:"hasher_threads"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		LogFormat:   "json",
		MetricsAddr: "127.0.0.1:9100",
		SessionTTL:  24 * time.Hour,
	}
}

// Load reads configuration. path may be empty (no config file); flags may be
// nil (no flag overrides). Flag names map to config keys with dashes replaced
// by underscores (--log-format sets log_format).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks fields that have constraints regardless of which commands
// run. Fields required only by some commands (database URL, session key) are
// checked by their consumers.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.SessionTTL < 0 {
		return oops.Code("CONFIG_INVALID").
			With("session_ttl", c.SessionTTL.String()).
			Errorf("session_ttl cannot be negative")
	}
	if c.SessionKey != "" {
		if _, err := c.SessionKeyBytes(); err != nil {
			return err
		}
	}
	return nil
}

// SessionKeyBytes decodes the hex session key.
func (c *Config) SessionKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.SessionKey)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "decode session key").
			Wrap(err)
	}
	return key, nil
}
