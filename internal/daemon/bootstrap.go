// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/stbbridge/internal/api"
	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/cache"
	"github.com/ManuGH/stbbridge/internal/capacity"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/entries"
	"github.com/ManuGH/stbbridge/internal/health"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/player"
	"github.com/ManuGH/stbbridge/internal/setup"
	"github.com/ManuGH/stbbridge/internal/telemetry"
)

const cacheCleanupInterval = time.Minute

// Bootstrap builds every component for the active configuration. Without an
// account the bridge starts with no players and only offers the config flow.
// Resources acquired before a failure are released.
func Bootstrap(ctx context.Context, holder *config.Holder) (app *App, err error) {
	cfg := holder.Get()
	logger := xglog.WithComponent("daemon")

	var cleanups []func()
	defer func() {
		if err != nil {
			for i := len(cleanups) - 1; i >= 0; i-- {
				cleanups[i]()
			}
		}
	}()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Str("event", "telemetry.init_failed").Msg("telemetry initialization failed, continuing without tracing")
		tp = nil
	}

	client := backend.NewClient(cfg.Backend.URL, backend.OptionsFrom(cfg))
	cleanups = append(cleanups, client.CloseIdleConnections)

	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	cleanups = append(cleanups, func() { _ = c.Close() })

	store, err := entries.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open entry store: %w", err)
	}
	cleanups = append(cleanups, func() { _ = store.Close() })

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewFuncChecker("store", false, func(ctx context.Context) error {
		_, err := store.List(ctx)
		return err
	}))
	if r, ok := c.(*cache.Redis); ok {
		hm.RegisterChecker(health.NewFuncChecker("cache", true, r.HealthCheck))
	}

	registry := player.NewRegistry()
	var sensor *capacity.Sensor
	connected := false

	if cfg.HasAccount() {
		if err := client.Connect(ctx, backend.CredentialsFrom(cfg)); err != nil {
			return nil, fmt.Errorf("connect account %s: %w", cfg.Username, err)
		}
		connected = true
		cleanups = append(cleanups, func() { _ = client.Disconnect(context.WithoutCancel(ctx)) })

		sensor, err = capacity.Probe(ctx, client, c, capacity.Options{
			Country: cfg.Country,
			Account: cfg.Username,
			TTL:     cfg.Cache.CapacityTTL,
		})
		switch {
		case errors.Is(err, capacity.ErrNotSupported):
			logger.Info().Str("event", "capacity.skipped").Str("country", cfg.Country).Msg("recording capacity sensor not available")
			sensor = nil
		case err != nil:
			return nil, fmt.Errorf("probe recording capacity: %w", err)
		}

		template := player.Options{
			Provider:           cfg.Provider,
			OmitChannelQuality: cfg.OmitChannelQuality,
			AppSwitchDelay:     cfg.Player.AppSwitchDelay,
			RootTitle:          cfg.Player.RootTitle,
			SinglesTitle:       cfg.Player.SinglesTitle,
		}
		if sensor != nil {
			template.Capacity = sensor
		}
		registry, err = player.Discover(ctx, client, template)
		if err != nil {
			return nil, fmt.Errorf("discover boxes: %w", err)
		}

		hm.RegisterChecker(health.NewFuncChecker("backend", false, func(ctx context.Context) error {
			_, err := client.Boxes(ctx)
			return err
		}))
	}

	flow := setup.NewFlow(client, store, setup.Options{
		ConfigPath: holder.Path(),
		Base:       holder.Get,
	})

	deps := api.Deps{
		Players: registry,
		Setup:   flow,
		Entries: store,
		Health:  hm,
	}
	if sensor != nil {
		deps.Capacity = sensor
	}
	server := api.New(api.ConfigFrom(cfg), deps)

	manager, err := NewManager(ServerConfigFrom(cfg), server.Handler(), logger)
	if err != nil {
		return nil, err
	}

	// Hooks run in reverse: disconnect first, telemetry last.
	if tp != nil {
		manager.RegisterShutdownHook("telemetry", tp.Shutdown)
	}
	manager.RegisterShutdownHook("store", func(context.Context) error { return store.Close() })
	manager.RegisterShutdownHook("cache", func(context.Context) error { return c.Close() })
	manager.RegisterShutdownHook("backend", func(ctx context.Context) error {
		defer client.CloseIdleConnections()
		if !connected {
			return nil
		}
		return client.Disconnect(ctx)
	})

	logger.Info().
		Str("event", "daemon.bootstrapped").
		Str(xglog.FieldProvider, string(cfg.Provider)).
		Int("players", len(registry.List())).
		Bool("capacity_sensor", sensor != nil).
		Msg("bridge components ready")

	return NewApp(logger, manager, holder), nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemory(cacheCleanupInterval), nil
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "stbbridge:",
		}, xglog.WithComponent("cache"))
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
