// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, "nl", cfg.Country)
	assert.Equal(t, time.Second, cfg.Player.AppSwitchDelay)
	assert.Equal(t, time.Hour, cfg.Cache.CapacityTTL)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
provider: arris_dcx960
country: "Telenet (FR)"
username: user@example.com
password: secret
omitChannelQuality: true
backend:
  url: http://bridge:9000
  timeout: 3s
player:
  appSwitchDelay: 250ms
`)

	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderArris, cfg.Provider)
	assert.Equal(t, "be-fr", cfg.Country, "display names resolve to codes")
	assert.True(t, cfg.OmitChannelQuality)
	assert.Equal(t, "http://bridge:9000", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.MaxRetries, "untouched keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Player.AppSwitchDelay)
	require.NoError(t, Validate(cfg))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "provider: lghorizon\ncountry: nl\nbackend:\n  url: http://file:1\n")
	t.Setenv(EnvBackendURL, "http://env:2")
	t.Setenv(EnvCountry, "UPC (PL)")
	t.Setenv(EnvOmitChannelQuality, "yes")
	t.Setenv(EnvBackendMaxRetries, "not-a-number")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env:2", cfg.Backend.URL)
	assert.Equal(t, "pl", cfg.Country)
	assert.True(t, cfg.OmitChannelQuality)
	assert.Equal(t, 2, cfg.Backend.MaxRetries, "invalid env falls back to the file/default value")
	assert.Contains(t, l.ConsumedEnvKeys, EnvBackendURL)
}

func TestLoad_StrictRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "provider: lghorizon\nbouquet: Favourites\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Backend.URL, cfg.Backend.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "dev").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("BRIDGE_HOST", "sidecar")
	path := writeConfig(t, "backend:\n  url: http://${BRIDGE_HOST}:8099\n")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, "http://sidecar:8099", cfg.Backend.URL)
}
