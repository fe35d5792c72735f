// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the bridge components and owns their lifecycle.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/stbbridge/internal/config"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App owns the long-lived runtime: config watcher, reload wiring and the
// server manager.
type App struct {
	logger       zerolog.Logger
	manager      *Manager
	holder       *config.Holder
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager *Manager, holder *config.Holder) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		reloadSignal: syscall.SIGHUP,
	}
}

// Manager returns the server manager.
func (a *App) Manager() *Manager { return a.manager }

// Run blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// The watcher is best-effort; the bridge keeps serving without it.
		g.Go(func() error {
			if err := a.holder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str("event", "config.watcher_failed").Msg("config watcher stopped")
			}
			return nil
		})

		applyCh := make(chan config.AppConfig, 1)
		a.holder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					applyRuntime(cfg)
				}
			}
		})
	}

	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, a.reloadSignal)
			defer signal.Stop(hup)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hup:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.holder.Reload(ctx); err != nil {
						a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}

// applyRuntime applies the settings that change without a restart. Account,
// backend and store changes need a restart.
func applyRuntime(cfg config.AppConfig) {
	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
}
