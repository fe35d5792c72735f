// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/rs/zerolog"
)

// Environment variables recognised by the Loader.
const (
	EnvProvider           = "STB_PROVIDER"
	EnvCountry            = "STB_COUNTRY"
	EnvUsername           = "STB_USERNAME"
	EnvPassword           = "STB_PASSWORD"
	EnvIdentifier         = "STB_IDENTIFIER"
	EnvRefreshToken       = "STB_REFRESH_TOKEN"
	EnvOmitChannelQuality = "STB_OMIT_CHANNEL_QUALITY"

	EnvBackendURL        = "STB_BACKEND_URL"
	EnvBackendUsername   = "STB_BACKEND_USERNAME"
	EnvBackendPassword   = "STB_BACKEND_PASSWORD"
	EnvBackendTimeout    = "STB_BACKEND_TIMEOUT"
	EnvBackendMaxRetries = "STB_BACKEND_MAX_RETRIES"
	EnvBackendRPS        = "STB_BACKEND_RPS"

	EnvAppSwitchDelay = "STB_APP_SWITCH_DELAY"
	EnvListenAddr     = "STB_LISTEN_ADDR"
	EnvRateLimitRPS   = "STB_RATELIMIT_RPS"
	EnvLogLevel       = "STB_LOG_LEVEL"
	EnvLogService     = "STB_LOG_SERVICE"

	EnvCacheBackend  = "STB_CACHE_BACKEND"
	EnvRedisAddr     = "STB_REDIS_ADDR"
	EnvRedisPassword = "STB_REDIS_PASSWORD"
	EnvRedisDB       = "STB_REDIS_DB"

	EnvStoreBackend = "STB_STORE_BACKEND"
	EnvStorePath    = "STB_STORE_PATH"

	EnvTelemetryEnabled  = "STB_TELEMETRY_ENABLED"
	EnvTelemetryExporter = "STB_TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint = "STB_TELEMETRY_ENDPOINT"
	EnvTelemetrySampling = "STB_TELEMETRY_SAMPLING_RATE"

	// EnvConfigPath names the config file when -config is not given. It is
	// read by the command, not the Loader.
	EnvConfigPath = "STB_CONFIG"
)

func envLogger() zerolog.Logger {
	return xglog.WithComponent("config")
}

func sensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// parseEnv resolves key with parse, falling back to def when the variable is
// unset, empty or invalid. The chosen source is logged; secrets are never.
func parseEnv[T any](logger zerolog.Logger, key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		reason := "using default value"
		if ok {
			reason = "using default value (environment variable is empty)"
		}
		logger.Debug().
			Str("key", key).
			Str("default", redact(key, fmt.Sprint(def))).
			Str("source", "default").
			Msg(reason)
		return def
	}

	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", redact(key, v)).
			Str("default", redact(key, fmt.Sprint(def))).
			Msg("invalid value in environment variable, using default")
		return def
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitiveKey(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return parsed
}

func redact(key, value string) string {
	if sensitiveKey(key) && value != "" {
		return "***"
	}
	return value
}

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseEnv(envLogger(), key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from the environment or returns defaultValue.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(envLogger(), key, defaultValue, strconv.Atoi)
}

// ParseFloat reads a float64 from the environment or returns defaultValue.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(envLogger(), key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a Go duration ("5s") from the environment or returns
// defaultValue.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(envLogger(), key, defaultValue, time.ParseDuration)
}

// ParseBool reads a boolean from the environment. It accepts true/false,
// 1/0 and yes/no (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(envLogger(), key, defaultValue, parseBool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
