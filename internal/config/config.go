// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

// Package config loads the player store configuration from YAML with
// command-line flag overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ironvale/playerstore/internal/xdg"
)

// Logging configures the structured logger.
type Logging struct {
	Format string `koanf:"format" yaml:"format" validate:"oneof=json text"`
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Observability configures the metrics and health endpoint.
type Observability struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
}

// Config is the root configuration.
type Config struct {
	// DataDir is the root under which all persistent state lives.
	DataDir       string        `koanf:"data_dir" yaml:"data_dir" validate:"required"`
	Logging       Logging       `koanf:"logging" yaml:"logging"`
	Observability Observability `koanf:"observability" yaml:"observability"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file or flags are given.
func Default() Config {
	return Config{
		DataDir: xdg.DataDir(),
		Logging: Logging{
			Format: "json",
			Level:  "info",
		},
		Observability: Observability{
			Enabled: false,
			Addr:    "127.0.0.1:9100",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// flagKey maps a command-line flag name to its config key. Unmapped flags
// are ignored.
func flagKey(name string) string {
	switch name {
	case "data-dir":
		return "data_dir"
	case "log-format":
		return "logging.format"
	case "log-level":
		return "logging.level"
	case "metrics":
		return "observability.enabled"
	case "metrics-addr":
		return "observability.addr"
	default:
		// Parked under a scratch prefix and dropped after the merge.
		return "ignored." + name
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then any set
// flags. The result is validated before being returned.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
				return nil, oops.Code("CONFIG_PARSE_FAILED").
					With("path", path).
					Wrap(err)
			}
		} else if !os.IsNotExist(err) {
			return nil, oops.Code("CONFIG_READ_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(name, value string) (string, any) {
			return flagKey(name), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}
	k.Delete("ignored")

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if c.Observability.Enabled && c.Observability.Addr == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("observability.addr is required when observability is enabled")
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. Fails if the file already exists.
func WriteDefault(path string) error {
	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// Redacted returns a single-line summary for startup logging.
func (c *Config) Redacted() string {
	var b strings.Builder
	b.WriteString("data_dir=")
	b.WriteString(c.DataDir)
	b.WriteString(" log=")
	b.WriteString(c.Logging.Format)
	b.WriteString("/")
	b.WriteString(c.Logging.Level)
	if c.Observability.Enabled {
		b.WriteString(" metrics=")
		b.WriteString(c.Observability.Addr)
	}
	return b.String()
}
