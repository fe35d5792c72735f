// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// Holder keeps the active configuration and swaps it atomically on reload.
// A reload that fails to load or validate leaves the active config untouched.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	logger  zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig
}

// NewHolder creates a Holder seeded with initial.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the active configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Path returns the watched config file, or "" when running without one.
func (h *Holder) Path() string {
	if h.loader == nil {
		return ""
	}
	return h.loader.Path()
}

// Reload loads and validates the configuration and makes it active.
func (h *Holder) Reload(_ context.Context) error {
	if h.loader == nil {
		return errors.New("reload: holder has no loader")
	}
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}
	if err := Validate(next); err != nil {
		h.logger.Error().Err(err).Str("event", "config.validation_failed").Msg("new configuration failed validation")
		return fmt.Errorf("validate config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.notify(next)
	h.logChanges(prev, next)
	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded successfully")
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. Without a config file it returns immediately.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.Path()
	if path == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	h.logger.Info().Str("event", "config.watcher_started").Str("path", path).Msg("watching config file for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Write and Create cover in-place edits and atomic replaces.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().Err(err).Str("event", "config.auto_reload_failed").Msg("automatic config reload failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}

// RegisterListener subscribes ch to successful reloads. Sends never block.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str("event", "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(prev, next AppConfig) {
	if prev.Log.Level != next.Log.Level {
		h.logger.Info().Str("old", prev.Log.Level).Str("new", next.Log.Level).Msg("config changed: log.level")
	}
	if prev.OmitChannelQuality != next.OmitChannelQuality {
		h.logger.Info().Bool("old", prev.OmitChannelQuality).Bool("new", next.OmitChannelQuality).Msg("config changed: omitChannelQuality")
	}
	if prev.Backend.URL != next.Backend.URL {
		h.logger.Info().Str("old", maskURL(prev.Backend.URL)).Str("new", maskURL(next.Backend.URL)).Msg("config changed: backend.url")
	}
	if prev.Player.AppSwitchDelay != next.Player.AppSwitchDelay {
		h.logger.Info().Dur("old", prev.Player.AppSwitchDelay).Dur("new", next.Player.AppSwitchDelay).Msg("config changed: player.appSwitchDelay")
	}
}

func maskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	return "***redacted***"
}
