// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/ManuGH/stbbridge/internal/validate"
)

// Validate checks a resolved configuration. Account fields are optional so a
// fresh install can start and run the setup flow.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if cfg.Provider != "" {
		v.OneOf("provider", string(cfg.Provider), []string{string(ProviderArris), string(ProviderHorizon)})
		if cfg.Provider.Known() {
			if _, err := CountryCode(cfg.Provider, cfg.Country); err != nil {
				v.AddError("country", err.Error(), cfg.Country)
			}
		}
	}
	if cfg.Username != "" && cfg.Password == "" && cfg.RefreshToken == "" {
		v.AddError("password", "password or refreshToken is required when username is set", "")
	}

	v.URL("backend.url", cfg.Backend.URL, []string{"http", "https"})
	v.PositiveDuration("backend.timeout", cfg.Backend.Timeout)
	v.Range("backend.maxRetries", cfg.Backend.MaxRetries, 0, 10)
	v.NonNegative("backend.breakerThreshold", cfg.Backend.BreakerThreshold)
	v.NonNegativeDuration("backend.breakerReset", cfg.Backend.BreakerReset)
	if cfg.Backend.RPS < 0 {
		v.AddError("backend.rps", "value cannot be negative", cfg.Backend.RPS)
	}

	v.NonNegativeDuration("player.appSwitchDelay", cfg.Player.AppSwitchDelay)

	v.NotEmpty("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.rateLimitRPS", cfg.API.RateLimitRPS)

	v.OneOf("log.level", strings.ToLower(cfg.Log.Level), []string{"trace", "debug", "info", "warn", "error"})

	v.OneOf("cache.backend", cfg.Cache.Backend, []string{"memory", "redis"})
	if cfg.Cache.Backend == "redis" {
		v.NotEmpty("cache.redisAddr", cfg.Cache.RedisAddr)
	}
	v.Range("cache.redisDB", cfg.Cache.RedisDB, 0, 15)
	v.PositiveDuration("cache.capacityTTL", cfg.Cache.CapacityTTL)

	v.OneOf("store.backend", cfg.Store.Backend, []string{"sqlite", "badger", "memory"})
	if cfg.Store.Backend != "memory" {
		v.NotEmpty("store.path", cfg.Store.Path)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
