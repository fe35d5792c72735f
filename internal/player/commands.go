// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ManuGH/stbbridge/internal/backend"
	xglog "github.com/ManuGH/stbbridge/internal/log"
)

// Transport commands accepted by Command.
const (
	CommandTurnOn        = "turn_on"
	CommandTurnOff       = "turn_off"
	CommandPlay          = "play"
	CommandPause         = "pause"
	CommandStop          = "stop"
	CommandNextTrack     = "next_track"
	CommandPreviousTrack = "previous_track"
)

var transport = map[string]string{
	CommandTurnOn:        backend.CmdTurnOn,
	CommandTurnOff:       backend.CmdTurnOff,
	CommandPlay:          backend.CmdPlay,
	CommandPause:         backend.CmdPause,
	CommandStop:          backend.CmdStop,
	CommandNextTrack:     backend.CmdNextChannel,
	CommandPreviousTrack: backend.CmdPreviousChannel,
}

// Command runs a transport command. Track skipping zaps channels.
func (p *Player) Command(ctx context.Context, name string) error {
	cmd, ok := transport[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return p.send(ctx, cmd, "")
}

// SelectSource tunes to the channel shown as display in the source list.
func (p *Player) SelectSource(ctx context.Context, display string) error {
	canonical, ok := p.channels.Resolve(display)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, display)
	}
	return p.send(ctx, backend.CmdSetChannel, canonical)
}

// Media types accepted by PlayMedia.
const (
	MediaTypeEpisode          = "episode"
	MediaTypeRecordingEpisode = "recording_episode"
	MediaTypeApp              = "app"
	MediaTypeChannel          = "channel"
)

// PlayMedia starts a recording, opens an app or tunes to a channel number.
// A channel number is entered digit by digit; when an app is on screen the
// box is first switched back to TV.
func (p *Player) PlayMedia(ctx context.Context, mediaType, mediaID string) error {
	switch mediaType {
	case MediaTypeEpisode, MediaTypeRecordingEpisode:
		return p.send(ctx, backend.CmdPlayRecording, mediaID)

	case MediaTypeApp:
		return p.send(ctx, backend.CmdSetChannel, mediaID)

	case MediaTypeChannel:
		if !positiveInt(mediaID) {
			p.logger.Warn().
				Str(xglog.FieldEvent, "player.invalid_media_id").
				Str(xglog.FieldContentID, mediaID).
				Msg("channel media id must be a positive integer")
			return fmt.Errorf("%w: %q", ErrInvalidMediaIdentifier, mediaID)
		}
		box, err := p.backend.Box(ctx, p.boxID)
		if err != nil {
			return err
		}
		if box.Playing.SourceType == backend.SourceApp {
			if err := p.send(ctx, backend.CmdSendKey, "TV"); err != nil {
				return err
			}
			if err := p.sleep(ctx, p.appSwitchDelay); err != nil {
				return err
			}
		}
		for _, digit := range mediaID {
			if err := p.send(ctx, backend.CmdSendKey, string(digit)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
}

// positiveInt accepts plain decimal digits with a value above zero.
func positiveInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return err == nil && n > 0
}

// Services exposed per box.
const (
	ServiceRecord         = "record"
	ServiceRewind         = "rewind"
	ServiceFastForward    = "fast_forward"
	ServiceRemoteKeyPress = "remote_key_press"
)

// ServiceCall is the payload of a service invocation.
type ServiceCall struct {
	RemoteKey string `json:"remote_key,omitempty"`
}

// CallService runs one of the box services.
func (p *Player) CallService(ctx context.Context, service string, call ServiceCall) error {
	switch service {
	case ServiceRecord:
		return p.send(ctx, backend.CmdRecord, "")
	case ServiceRewind:
		return p.send(ctx, backend.CmdRewind, "")
	case ServiceFastForward:
		return p.send(ctx, backend.CmdFastForward, "")
	case ServiceRemoteKeyPress:
		if call.RemoteKey == "" {
			return ErrMissingRemoteKey
		}
		return p.send(ctx, backend.CmdSendKey, call.RemoteKey)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
}
