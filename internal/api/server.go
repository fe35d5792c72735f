// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the JSON HTTP surface of the bridge.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/stbbridge/internal/api/middleware"
	"github.com/ManuGH/stbbridge/internal/capacity"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/entries"
	"github.com/ManuGH/stbbridge/internal/health"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/player"
	"github.com/ManuGH/stbbridge/internal/setup"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// CapacityReader serves the recording capacity sensor.
type CapacityReader interface {
	Read(ctx context.Context) (capacity.Reading, error)
}

// SetupFlow runs the account config flow.
type SetupFlow interface {
	Submit(ctx context.Context, in setup.Input) (entries.Entry, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TracingService names server spans; empty disables tracing.
	TracingService string
}

// ConfigFrom derives the API config from the bridge configuration.
func ConfigFrom(cfg config.AppConfig) Config {
	c := Config{
		RateLimitRequests: cfg.API.RateLimitRPS,
		RateLimitWindow:   cfg.API.RateLimitWindow,
	}
	if cfg.Telemetry.Enabled {
		c.TracingService = cfg.Telemetry.ServiceName
	}
	return c
}

// Deps are the components behind the routes. Capacity may be nil when the
// sensor is not available for the account; Setup and Entries may be nil
// when the config flow is not offered.
type Deps struct {
	Players  *player.Registry
	Capacity CapacityReader
	Setup    SetupFlow
	Entries  entries.Store
	Health   *health.Manager
	Logger   *zerolog.Logger
}

// Server holds the routed handler.
type Server struct {
	deps   Deps
	router chi.Router
	logger zerolog.Logger
}

// New builds the router for deps.
func New(cfg Config, deps Deps) *Server {
	s := &Server{deps: deps, logger: xglog.WithComponent("api")}
	if deps.Logger != nil {
		s.logger = *deps.Logger
	}
	if s.deps.Players == nil {
		s.deps.Players = player.NewRegistry()
	}
	if s.deps.Health == nil {
		s.deps.Health = health.NewManager("")
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        cfg.TracingService,
		EnableLogging:         true,
		RateLimitRequests:     cfg.RateLimitRequests,
		RateLimitWindow:       cfg.RateLimitWindow,
	})
	s.routes(r)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handleListPlayers)
		r.Route("/players/{id}", func(r chi.Router) {
			r.Use(s.withPlayer)
			r.Get("/", s.handleGetPlayer)
			r.Get("/browse", s.handleBrowse)
			r.Post("/source", s.handleSelectSource)
			r.Post("/play_media", s.handlePlayMedia)
			r.Post("/services/{service}", s.handlePlayerService)
			r.Post("/{command}", s.handleCommand)
		})
		r.Post("/services/{service}", s.handleService)
		r.Get("/sensors/recording_capacity", s.handleCapacity)
		r.Post("/setup", s.handleSetup)
		r.Get("/entries", s.handleListEntries)
	})
}
