// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package player exposes one set-top box as a media player: status, source
// selection, transport commands, media playback and recording browsing.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/channels"
	"github.com/ManuGH/stbbridge/internal/config"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/rs/zerolog"
)

// Backend is the subset of the vendor bridge a Player needs.
type Backend interface {
	Box(ctx context.Context, boxID string) (backend.Box, error)
	Channels(ctx context.Context) ([]channels.Channel, error)
	Recordings(ctx context.Context) ([]recordings.Entry, error)
	Show(ctx context.Context, showID string) (recordings.Show, error)
	SendCommand(ctx context.Context, boxID string, cmd backend.Command) error
}

// CapacitySource reports the DVR capacity shown in the player attributes.
type CapacitySource interface {
	Value(ctx context.Context) (percent float64, ok bool)
}

// Options configures a Player.
type Options struct {
	BoxID              string
	Name               string
	Provider           config.Provider
	OmitChannelQuality bool
	AppSwitchDelay     time.Duration
	RootTitle          string
	SinglesTitle       string
	Capacity           CapacitySource
	Logger             *zerolog.Logger
}

// Player drives one box. The channel map is built once in New and is
// read-only afterwards; a Player is safe for concurrent use.
type Player struct {
	boxID          string
	name           string
	provider       config.Provider
	backend        Backend
	channels       *channels.Map
	builder        *recordings.Builder
	capacity       CapacitySource
	appSwitchDelay time.Duration
	logger         zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New fetches the channel lineup and returns a Player for opts.BoxID.
func New(ctx context.Context, b Backend, opts Options) (*Player, error) {
	if opts.BoxID == "" {
		return nil, fmt.Errorf("player: box id is required")
	}

	logger := xglog.WithComponent("player").With().Str(xglog.FieldBoxID, opts.BoxID).Logger()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str(xglog.FieldBoxID, opts.BoxID).Logger()
	}

	lineup, err := b.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("player %s: load channels: %w", opts.BoxID, err)
	}
	strip := opts.OmitChannelQuality && opts.Provider.StripsChannelQuality()
	chMap := channels.BuildMap(lineup, strip)
	metrics.SetChannelMapSize(opts.BoxID, chMap.Len())
	if chMap.Len() < len(lineup) {
		logger.Warn().
			Str(xglog.FieldEvent, "player.channel_collision").
			Int("channels", len(lineup)).
			Int("distinct", chMap.Len()).
			Msg("channels collapse to the same display title; the last one wins")
	}

	delay := opts.AppSwitchDelay
	if delay < 0 {
		delay = 0
	}

	shape, style := treeLayout(opts.Provider)
	p := &Player{
		boxID:    opts.BoxID,
		name:     opts.Name,
		provider: opts.Provider,
		backend:  b,
		channels: chMap,
		builder: recordings.NewBuilder(recordings.Options{
			Shape:        shape,
			Style:        style,
			RootTitle:    opts.RootTitle,
			SinglesTitle: opts.SinglesTitle,
			Logger:       &logger,
		}),
		capacity:       opts.Capacity,
		appSwitchDelay: delay,
		logger:         logger,
		sleep:          sleepContext,
	}
	if p.name == "" {
		p.name = opts.BoxID
	}

	logger.Info().
		Str(xglog.FieldEvent, "player.ready").
		Str(xglog.FieldProvider, string(opts.Provider)).
		Int("channels", chMap.Len()).
		Bool("strip_quality", strip).
		Msg("media player ready")
	return p, nil
}

// treeLayout maps a provider to how its recordings are grouped and titled.
func treeLayout(p config.Provider) (recordings.Shape, recordings.TitleStyle) {
	if p == config.ProviderArris {
		return recordings.ShapeSinglesBucket, recordings.StyleDash
	}
	return recordings.ShapeInline, recordings.StyleShow
}

// BoxID returns the box this player drives.
func (p *Player) BoxID() string { return p.boxID }

// Name returns the display name of the box.
func (p *Player) Name() string { return p.name }

// Sources returns the selectable display titles in lineup order.
func (p *Player) Sources() []string { return p.channels.Titles() }

func (p *Player) send(ctx context.Context, command, argument string) error {
	err := p.backend.SendCommand(ctx, p.boxID, backend.Command{Command: command, Argument: argument})
	ev := p.logger.Debug()
	if err != nil {
		ev = p.logger.Warn().Err(err)
	}
	ev.Str(xglog.FieldEvent, "player.command").
		Str(xglog.FieldCommand, command).
		Msg("box command sent")
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
