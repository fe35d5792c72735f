// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience guards calls to the vendor bridge with a circuit breaker.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/stbbridge/internal/metrics"
)

// State represents the circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

const (
	DefaultThreshold    = 5
	DefaultResetTimeout = 30 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Breaker opens after threshold consecutive failures and rejects calls until
// resetTimeout has passed. The first call after that is a probe: success
// closes the breaker, failure opens it again.
type Breaker struct {
	mu           sync.Mutex
	name         string
	state        State
	failures     int
	threshold    int
	resetTimeout time.Duration
	openedAt     time.Time
	probing      bool
	clock        clock
}

type Option func(*Breaker)

func WithClock(c clock) Option {
	return func(b *Breaker) { b.clock = c }
}

// NewBreaker creates a closed breaker. Non-positive arguments fall back to
// the defaults.
func NewBreaker(name string, threshold int, resetTimeout time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = DefaultResetTimeout
	}
	b := &Breaker{
		name:         name,
		state:        StateClosed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		clock:        realClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	metrics.SetBreakerState(b.name, string(b.state))
	return b
}

// Allow reports ErrCircuitOpen while the breaker rejects calls. In half-open
// state only one probe is admitted at a time.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.clock.Now().Sub(b.openedAt) < b.resetTimeout {
			return ErrCircuitOpen
		}
		b.transitionTo(StateHalfOpen)
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.probing = false

	switch {
	case b.state == StateHalfOpen:
		metrics.RecordBreakerTrip(b.name, "probe_failed")
		b.transitionTo(StateOpen)
	case b.state == StateClosed && b.failures >= b.threshold:
		metrics.RecordBreakerTrip(b.name, "threshold_exceeded")
		b.transitionTo(StateOpen)
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	b.transitionTo(StateClosed)
}

// RecordNeutral releases a half-open probe without judging the bridge, for
// calls the caller abandoned.
func (b *Breaker) RecordNeutral() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// Caller must hold mu.
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}
	b.state = next
	if next == StateOpen {
		b.openedAt = b.clock.Now()
	}
	metrics.SetBreakerState(b.name, string(next))
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
