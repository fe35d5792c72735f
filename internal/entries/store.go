// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package entries persists the accounts created by the setup flow.
//
// Secrets are not stored here; they live in the 0600 configuration file.
package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("entries: not found")
	ErrAlreadyConfigured = errors.New("entries: account already configured")
)

// Entry is one configured account.
type Entry struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Provider           config.Provider `json:"provider"`
	Country            string          `json:"country"`
	Username           string          `json:"username"`
	Identifier         string          `json:"identifier,omitempty"`
	OmitChannelQuality bool            `json:"omit_channel_quality"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewEntry returns an entry for account with a fresh id, titled with the
// username.
func NewEntry(account config.Account, now time.Time) Entry {
	return Entry{
		ID:                 uuid.NewString(),
		Title:              account.Username,
		Provider:           account.Provider,
		Country:            account.Country,
		Username:           account.Username,
		Identifier:         account.Identifier,
		OmitChannelQuality: account.OmitChannelQuality,
		CreatedAt:          now.UTC().Truncate(time.Second),
	}
}

// Store persists entries. An account is identified by provider and
// username; Put rejects a second entry for the same account with
// ErrAlreadyConfigured.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, id string) (Entry, error)
	Lookup(ctx context.Context, provider config.Provider, username string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return OpenSQLite(cfg.Path, DefaultSQLiteConfig())
	case "badger":
		return OpenBadger(cfg.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("entries: unsupported store backend %q", cfg.Backend)
	}
}
