// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package capacity implements the recording-capacity sensor: the share of
// the network DVR quota in use.
package capacity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ManuGH/stbbridge/internal/cache"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/rs/zerolog"
)

// ScanInterval is how long a reading stays valid.
const ScanInterval = time.Hour

// Unit of the sensor value.
const Unit = "%"

// ErrNotSupported is returned by Probe when the account has no quota to
// report.
var ErrNotSupported = errors.New("capacity: recording capacity not available")

// Reader fetches the current capacity from the backend.
type Reader interface {
	RecordingCapacity(ctx context.Context) (percent float64, ok bool, err error)
}

// Reading is one sensor value.
type Reading struct {
	Percent   float64   `json:"percent"`
	Unit      string    `json:"unit"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sensor caches capacity readings for ScanInterval (or the configured TTL).
type Sensor struct {
	reader Reader
	cache  cache.Cache
	key    string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// Options configures a Sensor.
type Options struct {
	Country string
	// Account scopes the cache key; readings of different accounts never mix.
	Account string
	TTL     time.Duration
	Logger  *zerolog.Logger
}

// Supported reports whether a capacity sensor exists for country. GB
// accounts have no network DVR quota.
func Supported(country string) bool {
	return !strings.HasPrefix(strings.ToLower(country), "gb")
}

// Probe creates the sensor after checking that the backend reports a
// capacity. It returns ErrNotSupported for GB accounts and accounts without
// a quota. An initial reading of 0% also counts as no quota; later readings
// of 0% are kept.
func Probe(ctx context.Context, r Reader, c cache.Cache, opts Options) (*Sensor, error) {
	if !Supported(opts.Country) {
		return nil, ErrNotSupported
	}

	s := newSensor(r, c, opts)
	reading, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if reading.Percent == 0 {
		s.cache.Delete(ctx, s.key)
		return nil, ErrNotSupported
	}
	return s, nil
}

func newSensor(r Reader, c cache.Cache, opts Options) *Sensor {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = ScanInterval
	}
	logger := xglog.WithComponent("capacity")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Sensor{
		reader: r,
		cache:  c,
		key:    "capacity:" + opts.Account,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Read returns the cached reading or fetches a fresh one.
func (s *Sensor) Read(ctx context.Context) (Reading, error) {
	if payload, ok := s.cache.Get(ctx, s.key); ok {
		var r Reading
		if err := json.Unmarshal(payload, &r); err == nil {
			return r, nil
		}
		s.cache.Delete(ctx, s.key)
	}
	return s.refresh(ctx)
}

// Value implements the player's capacity source. Failures yield ok=false.
func (s *Sensor) Value(ctx context.Context) (float64, bool) {
	r, err := s.Read(ctx)
	if err != nil {
		return 0, false
	}
	return r.Percent, true
}

func (s *Sensor) refresh(ctx context.Context) (Reading, error) {
	pct, ok, err := s.reader.RecordingCapacity(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str(xglog.FieldEvent, "capacity.fetch_failed").Msg("recording capacity fetch failed")
		return Reading{}, err
	}
	if !ok {
		return Reading{}, ErrNotSupported
	}

	r := Reading{Percent: pct, Unit: Unit, UpdatedAt: s.now().UTC()}
	payload, err := json.Marshal(r)
	if err == nil {
		s.cache.Set(ctx, s.key, payload, s.ttl)
	}
	metrics.SetRecordingCapacity(pct)
	s.logger.Debug().
		Str(xglog.FieldEvent, "capacity.updated").
		Float64("percent", pct).
		Msg("recording capacity updated")
	return r, nil
}
