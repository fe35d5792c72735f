// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/entries"
	"github.com/ManuGH/stbbridge/internal/setup"
	"github.com/ManuGH/stbbridge/internal/version"
)

type setupArgs struct {
	configPath    string
	listCountries bool
	input         setup.Input
}

func parseSetupArgs(args []string, stderr io.Writer) (setupArgs, error) {
	fs := flag.NewFlagSet("stbbridge setup", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		a        setupArgs
		provider string
	)
	fs.StringVar(&a.configPath, "config", "", "config file to write the account into")
	fs.BoolVar(&a.listCountries, "list-countries", false, "print the countries offered for -provider and exit")
	fs.StringVar(&provider, "provider", string(config.ProviderHorizon), "provider: arris_dcx960 or lghorizon")
	fs.StringVar(&a.input.Country, "country", "", "country display name or code")
	fs.StringVar(&a.input.Username, "username", "", "account username")
	fs.StringVar(&a.input.Password, "password", "", "account password (default $"+config.EnvPassword+")")
	fs.StringVar(&a.input.Identifier, "identifier", "", "optional box identifier")
	fs.StringVar(&a.input.RefreshToken, "refresh-token", "", "optional refresh token")
	fs.BoolVar(&a.input.OmitChannelQuality, "omit-channel-quality", false, "strip quality suffixes from channel names")
	if err := fs.Parse(args); err != nil {
		return setupArgs{}, err
	}

	a.input.Provider = config.Provider(provider)
	if a.input.Password == "" {
		a.input.Password = os.Getenv(config.EnvPassword)
	}
	a.configPath = resolveConfigPath(a.configPath)
	return a, nil
}

func runSetupCLI(args []string) int {
	a, err := parseSetupArgs(args, os.Stderr)
	if err != nil {
		return 2
	}

	if a.listCountries {
		for _, name := range config.Countries(a.input.Provider) {
			fmt.Println(name)
		}
		return 0
	}
	if a.configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config (or $"+config.EnvConfigPath+") is required")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(a.configPath, version.Version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", a.configPath, err)
		return 1
	}

	entry, err := submitSetup(ctx, cfg, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed (%s): %v\n", setup.Code(err), err)
		return 1
	}
	fmt.Printf("Configured %s (%s, %s) as entry %s\n", entry.Title, entry.Provider, entry.Country, entry.ID)
	return 0
}

func submitSetup(ctx context.Context, cfg config.AppConfig, a setupArgs) (entries.Entry, error) {
	store, err := entries.Open(cfg.Store)
	if err != nil {
		return entries.Entry{}, fmt.Errorf("open entry store: %w", err)
	}
	defer func() { _ = store.Close() }()

	opts := backend.OptionsFrom(cfg)
	opts.Provider = a.input.Provider
	client := backend.NewClient(cfg.Backend.URL, opts)
	defer client.CloseIdleConnections()

	flow := setup.NewFlow(client, store, setup.Options{
		ConfigPath: a.configPath,
		Base:       func() config.AppConfig { return cfg },
	})
	return flow.Submit(ctx, a.input)
}
