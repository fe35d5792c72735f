// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader resolves an AppConfig with precedence ENV > file > defaults.
type Loader struct {
	configPath string
	version    string

	// ConsumedEnvKeys records every environment key the last Load consulted.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a Loader. An empty configPath means ENV-only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the configuration file path, if any.
func (l *Loader) Path() string {
	return l.configPath
}

// Load builds the configuration: defaults, then the strictly parsed file,
// then environment overrides. The result is not validated; see Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := mergeFile(&cfg, l.configPath); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	}

	l.mergeEnv(&cfg)

	if cfg.Provider.Known() && cfg.Country != "" {
		if code, err := CountryCode(cfg.Provider, cfg.Country); err == nil {
			cfg.Country = code
		}
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Country: "nl",
		Backend: BackendConfig{
			URL:              "http://127.0.0.1:8099",
			Timeout:          10 * time.Second,
			MaxRetries:       2,
			Backoff:          200 * time.Millisecond,
			MaxBackoff:       2 * time.Second,
			RPS:              10,
			Burst:            20,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Player: PlayerConfig{
			AppSwitchDelay: time.Second,
		},
		API: APIConfig{
			ListenAddr:      ":8088",
			RateLimitRPS:    120,
			RateLimitWindow: time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:   "info",
			Service: "stbbridge",
		},
		Cache: CacheConfig{
			Backend:     "memory",
			CapacityTTL: time.Hour,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "stbbridge.db",
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "stbbridge",
			Environment:  "production",
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// mergeFile decodes path onto cfg. Keys absent from the file keep their
// current values; unknown keys are an error.
func mergeFile(cfg *AppConfig, path string) error {
	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Provider = Provider(l.envString(EnvProvider, string(cfg.Provider)))
	cfg.Country = l.envString(EnvCountry, cfg.Country)
	cfg.Username = l.envString(EnvUsername, cfg.Username)
	cfg.Password = l.envString(EnvPassword, cfg.Password)
	cfg.Identifier = l.envString(EnvIdentifier, cfg.Identifier)
	cfg.RefreshToken = l.envString(EnvRefreshToken, cfg.RefreshToken)
	cfg.OmitChannelQuality = l.envBool(EnvOmitChannelQuality, cfg.OmitChannelQuality)

	cfg.Backend.URL = l.envString(EnvBackendURL, cfg.Backend.URL)
	cfg.Backend.Username = l.envString(EnvBackendUsername, cfg.Backend.Username)
	cfg.Backend.Password = l.envString(EnvBackendPassword, cfg.Backend.Password)
	cfg.Backend.Timeout = l.envDuration(EnvBackendTimeout, cfg.Backend.Timeout)
	cfg.Backend.MaxRetries = l.envInt(EnvBackendMaxRetries, cfg.Backend.MaxRetries)
	cfg.Backend.RPS = l.envFloat(EnvBackendRPS, cfg.Backend.RPS)

	cfg.Player.AppSwitchDelay = l.envDuration(EnvAppSwitchDelay, cfg.Player.AppSwitchDelay)
	cfg.API.ListenAddr = l.envString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.RateLimitRPS = l.envInt(EnvRateLimitRPS, cfg.API.RateLimitRPS)
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Service = l.envString(EnvLogService, cfg.Log.Service)

	cfg.Cache.Backend = l.envString(EnvCacheBackend, cfg.Cache.Backend)
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt(EnvRedisDB, cfg.Cache.RedisDB)

	cfg.Store.Backend = l.envString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Store.Path = l.envString(EnvStorePath, cfg.Store.Path)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}
