// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StripsQualityOnlyForArris(t *testing.T) {
	f := newFake()

	p, err := newTestPlayer(f, config.ProviderArris, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"NPO 1", "NPO 2", "RTL 4"}, p.Sources())

	p, err = newTestPlayer(f, config.ProviderHorizon, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"NPO 1 HD", "NPO 2 HD", "RTL 4"}, p.Sources())
}

func TestNew_RequiresBoxAndChannels(t *testing.T) {
	_, err := New(context.Background(), newFake(), Options{})
	assert.Error(t, err)

	f := newFake()
	f.err = errors.New("down")
	_, err = newTestPlayer(f, config.ProviderHorizon, false)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderArris, true)
	require.NoError(t, err)
	p.capacity = fixedCapacity{pct: 42.5, ok: true}

	st, err := p.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, "Living room", st.Name)
	assert.Equal(t, "NPO 1", st.Source, "source is shown in display form")
	assert.Equal(t, "NPO 1 HD", st.Attributes.Channel)
	assert.Equal(t, backend.SourceLinear, st.Attributes.PlayMode)
	require.NotNil(t, st.Attributes.RecordingCapacity)
	assert.InDelta(t, 42.5, *st.Attributes.RecordingCapacity, 1e-9)
	assert.True(t, strings.HasPrefix(st.MediaImageURL, "http://img/npo1.jpg?"))
	assert.True(t, st.SupportedFeatures.Has(FeatureNextTrack|FeaturePreviousTrack))
	assert.True(t, st.SupportedFeatures.Has(FeatureBrowseMedia))
}

func TestStatus_StateMapping(t *testing.T) {
	tests := []struct {
		state  backend.BoxState
		paused bool
		want   State
	}{
		{backend.BoxOnlineRunning, false, StatePlaying},
		{backend.BoxOnlineRunning, true, StatePaused},
		{backend.BoxOnlineStandby, false, StateOff},
		{backend.BoxOffline, false, StateUnavailable},
		{"", false, StateUnavailable},
	}
	for _, tt := range tests {
		box := backend.Box{State: tt.state, Playing: backend.PlayingInfo{Paused: tt.paused}}
		assert.Equal(t, tt.want, mapState(box), "%s paused=%v", tt.state, tt.paused)
	}
}

func TestStatus_AppSourceDropsTrackFeatures(t *testing.T) {
	f := newFake()
	f.boxes[0].Playing = backend.PlayingInfo{SourceType: backend.SourceApp, Image: "http://img/app.png"}
	p, err := newTestPlayer(f, config.ProviderHorizon, false)
	require.NoError(t, err)

	st, err := p.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.SupportedFeatures.Has(FeatureNextTrack))
	assert.False(t, st.SupportedFeatures.Has(FeaturePreviousTrack))
	assert.Equal(t, "http://img/app.png", st.MediaImageURL, "only linear artwork gets a cache buster")
	assert.Nil(t, st.Attributes.RecordingCapacity)
}

func TestStatus_UnreachableBoxIsUnavailable(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderArris, true)
	require.NoError(t, err)
	f.err = &backend.Error{Sentinel: backend.ErrUnavailable, Operation: "boxes"}

	st, err := p.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateUnavailable, st.State)
	assert.Equal(t, "box1", st.BoxID)
	assert.Equal(t, []string{"NPO 1", "NPO 2", "RTL 4"}, st.SourceList)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Status(ctx)
	assert.ErrorIs(t, err, backend.ErrUnavailable, "a cancelled caller still sees the error")
}

func TestStatus_UnknownBoxIsUnavailable(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderHorizon, false)
	require.NoError(t, err)
	f.boxes = nil

	st, err := p.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateUnavailable, st.State)
}

func TestStatus_Position(t *testing.T) {
	f := newFake()
	updated := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	f.boxes[0].Playing.Duration = 3600
	f.boxes[0].Playing.Position = 61.7
	f.boxes[0].Playing.LastPositionUpdate = updated
	p, err := newTestPlayer(f, config.ProviderHorizon, false)
	require.NoError(t, err)

	st, err := p.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.MediaPosition)
	assert.Equal(t, 61.0, *st.MediaPosition)
	assert.Equal(t, 3600.0, *st.MediaDuration)
	assert.Equal(t, updated, *st.PositionUpdatedAt)
}

func TestMediaImageURL(t *testing.T) {
	u := mediaImageURL(backend.PlayingInfo{Image: "http://img/x.jpg?w=300", SourceType: backend.SourceLinear})
	assert.True(t, strings.HasPrefix(u, "http://img/x.jpg?w=300&"), u)
	assert.Empty(t, mediaImageURL(backend.PlayingInfo{SourceType: backend.SourceLinear}))
}

func TestSelectSource(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderArris, true)
	require.NoError(t, err)

	require.NoError(t, p.SelectSource(context.Background(), "NPO 2"))
	assert.Equal(t, []backend.Command{{Command: backend.CmdSetChannel, Argument: "NPO 2 HD"}}, f.commands())

	err = p.SelectSource(context.Background(), "NPO 2 HD")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestPlayMedia(t *testing.T) {
	t.Run("recording", func(t *testing.T) {
		f := newFake()
		p, err := newTestPlayer(f, config.ProviderArris, false)
		require.NoError(t, err)
		require.NoError(t, p.PlayMedia(context.Background(), MediaTypeRecordingEpisode, "rec-9"))
		assert.Equal(t, []backend.Command{{Command: backend.CmdPlayRecording, Argument: "rec-9"}}, f.commands())
	})

	t.Run("app", func(t *testing.T) {
		f := newFake()
		p, err := newTestPlayer(f, config.ProviderHorizon, false)
		require.NoError(t, err)
		require.NoError(t, p.PlayMedia(context.Background(), MediaTypeApp, "Netflix"))
		assert.Equal(t, []backend.Command{{Command: backend.CmdSetChannel, Argument: "Netflix"}}, f.commands())
	})

	t.Run("channel digits", func(t *testing.T) {
		f := newFake()
		p, err := newTestPlayer(f, config.ProviderHorizon, false)
		require.NoError(t, err)
		require.NoError(t, p.PlayMedia(context.Background(), MediaTypeChannel, "104"))
		assert.Equal(t, []backend.Command{
			{Command: backend.CmdSendKey, Argument: "1"},
			{Command: backend.CmdSendKey, Argument: "0"},
			{Command: backend.CmdSendKey, Argument: "4"},
		}, f.commands())
	})

	t.Run("channel from app switches to TV first", func(t *testing.T) {
		f := newFake()
		f.boxes[0].Playing.SourceType = backend.SourceApp
		p, err := newTestPlayer(f, config.ProviderHorizon, false)
		require.NoError(t, err)
		var slept time.Duration
		p.sleep = func(_ context.Context, d time.Duration) error {
			slept = d
			return nil
		}

		require.NoError(t, p.PlayMedia(context.Background(), MediaTypeChannel, "7"))
		assert.Equal(t, time.Second, slept)
		assert.Equal(t, []backend.Command{
			{Command: backend.CmdSendKey, Argument: "TV"},
			{Command: backend.CmdSendKey, Argument: "7"},
		}, f.commands())
	})

	t.Run("invalid channel ids send nothing", func(t *testing.T) {
		for _, id := range []string{"", "abc", "0", "-3", "+3", "1.5", " 12", "00"} {
			f := newFake()
			p, err := newTestPlayer(f, config.ProviderHorizon, false)
			require.NoError(t, err)
			err = p.PlayMedia(context.Background(), MediaTypeChannel, id)
			assert.ErrorIs(t, err, ErrInvalidMediaIdentifier, "id %q", id)
			assert.Empty(t, f.commands(), "id %q", id)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newFake()
		p, err := newTestPlayer(f, config.ProviderHorizon, false)
		require.NoError(t, err)
		assert.ErrorIs(t, p.PlayMedia(context.Background(), "music", "x"), ErrUnsupportedMediaType)
		assert.Empty(t, f.commands())
	})
}

func TestCommand(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderHorizon, false)
	require.NoError(t, err)

	require.NoError(t, p.Command(context.Background(), CommandNextTrack))
	require.NoError(t, p.Command(context.Background(), CommandTurnOff))
	assert.ErrorIs(t, p.Command(context.Background(), "eject"), ErrUnknownCommand)
	assert.Equal(t, []backend.Command{
		{Command: backend.CmdNextChannel},
		{Command: backend.CmdTurnOff},
	}, f.commands())
}

func TestCallService(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderArris, false)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.CallService(ctx, ServiceRecord, ServiceCall{}))
	require.NoError(t, p.CallService(ctx, ServiceRemoteKeyPress, ServiceCall{RemoteKey: "MediaRewind"}))
	assert.ErrorIs(t, p.CallService(ctx, ServiceRemoteKeyPress, ServiceCall{}), ErrMissingRemoteKey)
	assert.ErrorIs(t, p.CallService(ctx, "reboot", ServiceCall{}), ErrUnknownService)

	assert.Equal(t, []backend.Command{
		{Command: backend.CmdRecord},
		{Command: backend.CmdSendKey, Argument: "MediaRewind"},
	}, f.commands())
}

func TestBrowse(t *testing.T) {
	f := newFake()
	f.entries = []recordings.Entry{
		{Kind: recordings.KindShow, ShowID: "g1", Title: "Flikken"},
		{Kind: recordings.KindSingle, ID: "r1", Title: "Film"},
	}
	f.shows = map[string]recordings.Show{
		"g1": {ID: "g1", Title: "Flikken", Episodes: []recordings.Entry{
			{Kind: recordings.KindSingle, ID: "r2", Title: "Pilot", Season: 1, Episode: 3},
		}},
	}
	p, err := newTestPlayer(f, config.ProviderArris, false)
	require.NoError(t, err)
	ctx := context.Background()

	root, err := p.Browse(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, recordings.DefaultSinglesTitle, root.Children[1].Title)

	show, err := p.Browse(ctx, "show", "g1")
	require.NoError(t, err)
	assert.Equal(t, "S01E03 - Pilot", show.Children[0].Title)

	singles, err := p.Browse(ctx, recordings.ContentTypeSingles, recordings.ContentTypeSingles)
	require.NoError(t, err)
	require.Len(t, singles.Children, 1)
	assert.Equal(t, "Film", singles.Children[0].Title)

	_, err = p.Browse(ctx, "album", "x")
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestBrowse_FetchFailures(t *testing.T) {
	f := newFake()
	p, err := newTestPlayer(f, config.ProviderHorizon, false)
	require.NoError(t, err)

	f.showErr = &backend.Error{Sentinel: backend.ErrUnavailable, Operation: "show"}
	_, err = p.Browse(context.Background(), recordings.ContentTypeShow, "s1")
	assert.ErrorIs(t, err, recordings.ErrFetchFailed)
	assert.ErrorIs(t, err, backend.ErrUnavailable)

	f.err = &backend.Error{Sentinel: backend.ErrUpstream, Operation: "recordings"}
	_, err = p.Browse(context.Background(), recordings.ContentTypeRoot, "")
	assert.ErrorIs(t, err, recordings.ErrFetchFailed)
	assert.ErrorIs(t, err, backend.ErrUpstream)
}

func TestPositiveInt(t *testing.T) {
	assert.True(t, positiveInt("1"))
	assert.True(t, positiveInt("999"))
	assert.True(t, positiveInt("007"))
	assert.False(t, positiveInt("0"))
	assert.False(t, positiveInt("99999999999999999999999"))
}
