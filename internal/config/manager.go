// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Save writes cfg as YAML to path, replacing the file atomically. Readers and
// the file watcher never observe a partially written file.
func Save(path string, cfg AppConfig) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Account is the subset of AppConfig chosen by the setup flow.
type Account struct {
	Provider           Provider
	Country            string
	Username           string
	Password           string
	Identifier         string
	RefreshToken       string
	OmitChannelQuality bool
}

// Apply copies the account onto cfg.
func (a Account) Apply(cfg *AppConfig) {
	cfg.Provider = a.Provider
	cfg.Country = a.Country
	cfg.Username = a.Username
	cfg.Password = a.Password
	cfg.Identifier = a.Identifier
	cfg.RefreshToken = a.RefreshToken
	cfg.OmitChannelQuality = a.OmitChannelQuality
}

// AccountOf extracts the account fields of cfg.
func AccountOf(cfg AppConfig) Account {
	return Account{
		Provider:           cfg.Provider,
		Country:            cfg.Country,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Identifier:         cfg.Identifier,
		RefreshToken:       cfg.RefreshToken,
		OmitChannelQuality: cfg.OmitChannelQuality,
	}
}

// HasAccount reports whether cfg names a complete account to connect with.
func (cfg AppConfig) HasAccount() bool {
	return cfg.Provider.Known() && cfg.Username != ""
}
