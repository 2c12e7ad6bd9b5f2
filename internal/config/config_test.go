// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	def := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data-dir", def.DataDir, "")
	fs.String("log-format", def.Logging.Format, "")
	fs.String("log-level", def.Logging.Level, "")
	fs.Bool("metrics", def.Observability.Enabled, "")
	fs.String("metrics-addr", def.Observability.Addr, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/data/playerstore", cfg.DataDir)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Observability.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/game
logging:
  format: text
  level: debug
observability:
  enabled: true
  addr: "0.0.0.0:9200"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/game", cfg.DataDir)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, "0.0.0.0:9200", cfg.Observability.Addr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/game
logging:
  level: debug
`)

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--data-dir=/srv/other", "--log-level=warn"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "/srv/other", cfg.DataDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// File values not overridden by flags survive.
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidLevelRejected(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/game
logging:
  level: loud
`)

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestLoad_InvalidAddrRejected(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/game
observability:
  enabled: true
  addr: "not an addr"
`)

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestValidate_MetricsEnabledNeedsAddr(t *testing.T) {
	cfg := Default()
	cfg.Observability.Enabled = true
	cfg.Observability.Addr = ""
	require.Error(t, cfg.Validate())
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	// Refuses to clobber an existing file.
	require.Error(t, WriteDefault(path))
}
