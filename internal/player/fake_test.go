// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/channels"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	mu       sync.Mutex
	boxes    []backend.Box
	lineup   []channels.Channel
	entries  []recordings.Entry
	shows    map[string]recordings.Show
	err      error
	showErr  error
	sent     []backend.Command
	sentTo   []string
	failSend error
}

func (f *fakeBackend) Boxes(context.Context) ([]backend.Box, error) {
	return f.boxes, f.err
}

func (f *fakeBackend) Box(_ context.Context, id string) (backend.Box, error) {
	if f.err != nil {
		return backend.Box{}, f.err
	}
	for _, b := range f.boxes {
		if b.ID == id {
			return b, nil
		}
	}
	return backend.Box{}, &backend.Error{Sentinel: backend.ErrNotFound, Operation: "box"}
}

func (f *fakeBackend) Channels(context.Context) ([]channels.Channel, error) {
	return f.lineup, f.err
}

func (f *fakeBackend) Recordings(context.Context) ([]recordings.Entry, error) {
	return f.entries, f.err
}

func (f *fakeBackend) Show(_ context.Context, id string) (recordings.Show, error) {
	if f.showErr != nil {
		return recordings.Show{}, f.showErr
	}
	return f.shows[id], nil
}

func (f *fakeBackend) SendCommand(_ context.Context, boxID string, cmd backend.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	f.sentTo = append(f.sentTo, boxID)
	return f.failSend
}

func (f *fakeBackend) commands() []backend.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Command(nil), f.sent...)
}

type fixedCapacity struct {
	pct float64
	ok  bool
}

func (c fixedCapacity) Value(context.Context) (float64, bool) { return c.pct, c.ok }

func newFake() *fakeBackend {
	return &fakeBackend{
		boxes: []backend.Box{{
			ID:    "box1",
			Name:  "Living room",
			State: backend.BoxOnlineRunning,
			Playing: backend.PlayingInfo{
				ChannelTitle: "NPO 1 HD",
				Title:        "Journaal",
				Image:        "http://img/npo1.jpg",
				SourceType:   backend.SourceLinear,
			},
		}},
		lineup: []channels.Channel{
			{Title: "NPO 1 HD", Number: 1},
			{Title: "NPO 2 HD", Number: 2},
			{Title: "RTL 4", Number: 4},
		},
	}
}

func newTestPlayer(f *fakeBackend, provider config.Provider, omitQuality bool) (*Player, error) {
	nop := zerolog.Nop()
	p, err := New(context.Background(), f, Options{
		BoxID:              "box1",
		Provider:           provider,
		OmitChannelQuality: omitQuality,
		AppSwitchDelay:     time.Second,
		Logger:             &nop,
	})
	if err != nil {
		return nil, err
	}
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p, nil
}
