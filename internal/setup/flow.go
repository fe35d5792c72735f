// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package setup implements the account config flow: validate credentials
// against the vendor bridge, then persist the account.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/entries"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidInput  = errors.New("setup: invalid input")
	ErrCannotConnect = errors.New("setup: cannot connect")
	ErrInvalidAuth   = errors.New("setup: invalid authentication")
	ErrUnknown       = errors.New("setup: unexpected error")
)

// Result codes reported to the caller and counted in metrics.
const (
	CodeCreated           = "created"
	CodeInvalidInput      = "invalid_input"
	CodeCannotConnect     = "cannot_connect"
	CodeInvalidAuth       = "invalid_auth"
	CodeAlreadyConfigured = "already_configured"
	CodeUnknown           = "unknown"
)

// Code returns the result code of an error returned by the flow.
func Code(err error) string {
	switch {
	case err == nil:
		return CodeCreated
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInvalidAuth):
		return CodeInvalidAuth
	case errors.Is(err, ErrCannotConnect):
		return CodeCannotConnect
	case errors.Is(err, entries.ErrAlreadyConfigured):
		return CodeAlreadyConfigured
	default:
		return CodeUnknown
	}
}

// Input is what the user submits. Country may be a display name from the
// provider's table or a country code.
type Input struct {
	Provider           config.Provider `json:"provider"`
	Country            string          `json:"country"`
	Username           string          `json:"username"`
	Password           string          `json:"password"`
	Identifier         string          `json:"identifier,omitempty"`
	RefreshToken       string          `json:"refresh_token,omitempty"`
	OmitChannelQuality bool            `json:"omit_channel_quality"`
}

// Session is the part of the backend client used to check credentials.
type Session interface {
	Connect(ctx context.Context, creds backend.Credentials) error
	Disconnect(ctx context.Context) error
}

// Options configure a Flow.
type Options struct {
	// ConfigPath, when set, receives the account via an atomic config save.
	ConfigPath string
	// Base returns the configuration the account is merged into before
	// saving. Defaults to config.Defaults.
	Base   func() config.AppConfig
	Logger *zerolog.Logger
}

// Flow runs the config flow.
type Flow struct {
	session    Session
	store      entries.Store
	configPath string
	base       func() config.AppConfig
	now        func() time.Time
	logger     zerolog.Logger
}

// NewFlow returns a flow validating against session and persisting to store.
func NewFlow(session Session, store entries.Store, opts Options) *Flow {
	logger := xglog.WithComponent("setup")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	base := opts.Base
	if base == nil {
		base = config.Defaults
	}
	return &Flow{
		session:    session,
		store:      store,
		configPath: opts.ConfigPath,
		base:       base,
		now:        time.Now,
		logger:     logger,
	}
}

// Account checks the input shape and resolves the country to its code.
func Account(in Input) (config.Account, error) {
	if !in.Provider.Known() {
		return config.Account{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, in.Provider)
	}
	code, err := config.CountryCode(in.Provider, in.Country)
	if err != nil {
		return config.Account{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.Username) == "" {
		return config.Account{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if in.Password == "" && in.RefreshToken == "" {
		return config.Account{}, fmt.Errorf("%w: password or refresh token is required", ErrInvalidInput)
	}
	return config.Account{
		Provider:           in.Provider,
		Country:            code,
		Username:           strings.TrimSpace(in.Username),
		Password:           in.Password,
		Identifier:         in.Identifier,
		RefreshToken:       in.RefreshToken,
		OmitChannelQuality: in.OmitChannelQuality,
	}, nil
}

// Validate resolves the input and opens then closes a session with it.
func (f *Flow) Validate(ctx context.Context, in Input) (config.Account, error) {
	account, err := Account(in)
	if err != nil {
		return config.Account{}, err
	}

	creds := backend.Credentials{
		Provider:     account.Provider,
		Country:      account.Country,
		Username:     account.Username,
		Password:     account.Password,
		Identifier:   account.Identifier,
		RefreshToken: account.RefreshToken,
	}
	if err := f.session.Connect(ctx, creds); err != nil {
		return config.Account{}, classify(err)
	}
	if err := f.session.Disconnect(ctx); err != nil {
		f.logger.Warn().Err(err).
			Str(xglog.FieldEvent, "setup.disconnect_failed").
			Msg("credentials accepted but session close failed")
	}
	return account, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrInvalidAuth, err)
	case errors.Is(err, backend.ErrUnavailable), errors.Is(err, backend.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrCannotConnect, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
}

// Submit validates the input, stores a new entry and optionally writes the
// account into the configuration file.
func (f *Flow) Submit(ctx context.Context, in Input) (entries.Entry, error) {
	entry, err := f.submit(ctx, in)
	code := Code(err)
	metrics.RecordSetupAttempt(code)

	evt := f.logger.Info()
	if err != nil {
		evt = f.logger.Warn().Err(err)
	}
	evt.Str(xglog.FieldEvent, "setup.submitted").
		Str(xglog.FieldProvider, string(in.Provider)).
		Str("result", code).
		Str(xglog.FieldEntryID, entry.ID).
		Msg("config flow submitted")
	return entry, err
}

func (f *Flow) submit(ctx context.Context, in Input) (entries.Entry, error) {
	account, err := Account(in)
	if err != nil {
		return entries.Entry{}, err
	}
	if _, err := f.store.Lookup(ctx, account.Provider, account.Username); err == nil {
		return entries.Entry{}, entries.ErrAlreadyConfigured
	} else if !errors.Is(err, entries.ErrNotFound) {
		return entries.Entry{}, fmt.Errorf("%w: %w", ErrUnknown, err)
	}

	if _, err := f.Validate(ctx, in); err != nil {
		return entries.Entry{}, err
	}

	entry := entries.NewEntry(account, f.now())
	if err := f.store.Put(ctx, entry); err != nil {
		if errors.Is(err, entries.ErrAlreadyConfigured) {
			return entries.Entry{}, err
		}
		return entries.Entry{}, fmt.Errorf("%w: store entry: %w", ErrUnknown, err)
	}

	if f.configPath != "" {
		cfg := f.base()
		account.Apply(&cfg)
		if err := config.Save(f.configPath, cfg); err != nil {
			// Keep store and file consistent.
			_ = f.store.Delete(ctx, entry.ID)
			return entries.Entry{}, fmt.Errorf("%w: save config: %w", ErrUnknown, err)
		}
	}
	return entry, nil
}
