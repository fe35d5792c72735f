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

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := validConfig()
	cfg.OmitChannelQuality = true
	cfg.Player.AppSwitchDelay = 1500 * time.Millisecond

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, AccountOf(cfg), AccountOf(loaded))
	assert.Equal(t, cfg.Player.AppSwitchDelay, loaded.Player.AppSwitchDelay)
	assert.Equal(t, cfg.Backend, loaded.Backend)
}

func TestSave_ReplacesExisting(t *testing.T) {
	path := writeConfig(t, "provider: lghorizon\n")
	cfg := validConfig()
	cfg.Username = "second@example.com"
	require.NoError(t, Save(path, cfg))

	loaded, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", loaded.Username)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestAccountApply(t *testing.T) {
	cfg := Defaults()
	Account{Provider: ProviderArris, Country: "be-nl", Username: "u", Password: "p", OmitChannelQuality: true}.Apply(&cfg)
	assert.Equal(t, ProviderArris, cfg.Provider)
	assert.Equal(t, "be-nl", cfg.Country)
	assert.True(t, cfg.OmitChannelQuality)
	assert.Equal(t, Defaults().Backend, cfg.Backend)
}

func TestHasAccount(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.HasAccount())
	cfg.Provider = ProviderHorizon
	assert.False(t, cfg.HasAccount())
	cfg.Username = "alice"
	assert.True(t, cfg.HasAccount())
	cfg.Provider = "foo"
	assert.False(t, cfg.HasAccount())
}
