// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ManuGH/stbbridge/internal/backend"
	"golang.org/x/sync/errgroup"
)

// Directory is a Backend that can also list the boxes of the account.
type Directory interface {
	Backend
	Boxes(ctx context.Context) ([]backend.Box, error)
}

// Registry holds the players of one account, keyed by box id.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// Discover creates a player for every box of the account. template supplies
// everything but the box id and name.
func Discover(ctx context.Context, dir Directory, template Options) (*Registry, error) {
	boxes, err := dir.Boxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}

	players := make([]*Player, len(boxes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, box := range boxes {
		g.Go(func() error {
			opts := template
			opts.BoxID = box.ID
			opts.Name = box.Name
			p, err := New(gctx, dir, opts)
			if err != nil {
				return err
			}
			players[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	for _, p := range players {
		r.Add(p)
	}
	return r, nil
}

// Add registers p, replacing any player for the same box.
func (r *Registry) Add(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.BoxID()] = p
}

// Get returns the player for boxID.
func (r *Registry) Get(boxID string) (*Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[boxID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, boxID)
	}
	return p, nil
}

// List returns all players ordered by box id.
func (r *Registry) List() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BoxID() < out[j].BoxID() })
	return out
}

// CallService dispatches a service to the given boxes, or to every box when
// boxIDs is empty. Failures are joined; one failing box does not stop the
// others.
func (r *Registry) CallService(ctx context.Context, boxIDs []string, service string, call ServiceCall) error {
	targets := make([]*Player, 0, len(boxIDs))
	if len(boxIDs) == 0 {
		targets = r.List()
	}
	for _, id := range boxIDs {
		p, err := r.Get(id)
		if err != nil {
			return err
		}
		targets = append(targets, p)
	}

	var errs []error
	for _, p := range targets {
		if err := p.CallService(ctx, service, call); err != nil {
			errs = append(errs, fmt.Errorf("box %s: %w", p.BoxID(), err))
		}
	}
	return errors.Join(errs...)
}
