// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the resolved bridge configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	// Account
	Provider           Provider `yaml:"provider"`
	Country            string   `yaml:"country"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	Identifier         string   `yaml:"identifier,omitempty"`
	RefreshToken       string   `yaml:"refreshToken,omitempty"`
	OmitChannelQuality bool     `yaml:"omitChannelQuality"`

	Backend   BackendConfig   `yaml:"backend"`
	Player    PlayerConfig    `yaml:"player"`
	API       APIConfig       `yaml:"api"`
	Log       LogConfig       `yaml:"log"`
	Cache     CacheConfig     `yaml:"cache"`
	Store     StoreConfig     `yaml:"store"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BackendConfig describes the vendor bridge sidecar.
type BackendConfig struct {
	URL              string        `yaml:"url"`
	Username         string        `yaml:"username,omitempty"`
	Password         string        `yaml:"password,omitempty"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"maxRetries"`
	Backoff          time.Duration `yaml:"backoff"`
	MaxBackoff       time.Duration `yaml:"maxBackoff"`
	RPS              float64       `yaml:"rps"`
	Burst            int           `yaml:"burst"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// PlayerConfig tunes media player behaviour.
type PlayerConfig struct {
	// AppSwitchDelay is the wait after leaving an app before digits are sent.
	AppSwitchDelay time.Duration `yaml:"appSwitchDelay"`
	RootTitle      string        `yaml:"rootTitle,omitempty"`
	SinglesTitle   string        `yaml:"singlesTitle,omitempty"`
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	RateLimitRPS    int           `yaml:"rateLimitRPS"`
	RateLimitWindow time.Duration `yaml:"rateLimitWindow"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// CacheConfig selects the cache backend for polled readings.
type CacheConfig struct {
	Backend       string        `yaml:"backend"` // memory | redis
	RedisAddr     string        `yaml:"redisAddr,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB"`
	CapacityTTL   time.Duration `yaml:"capacityTTL"`
}

// StoreConfig selects the config-entry store.
type StoreConfig struct {
	Backend string `yaml:"backend"` // sqlite | badger | memory
	Path    string `yaml:"path"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	Environment  string  `yaml:"environment"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}
