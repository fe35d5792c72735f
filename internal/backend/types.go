// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"time"

	"github.com/ManuGH/stbbridge/internal/config"
)

// BoxState is the power/connection state a box reports.
type BoxState string

const (
	BoxOnlineRunning BoxState = "ONLINE_RUNNING"
	BoxOnlineStandby BoxState = "ONLINE_STANDBY"
	BoxOffline       BoxState = "OFFLINE"
)

// SourceType describes what the box is currently showing.
type SourceType string

const (
	SourceLinear    SourceType = "linear"
	SourceReplay    SourceType = "replay"
	SourceRecording SourceType = "nDVR"
	SourceApp       SourceType = "app"
)

// Box is one set-top box registered on the account.
type Box struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	State   BoxState    `json:"state"`
	Playing PlayingInfo `json:"playing"`
}

// PlayingInfo is the box's current playback.
type PlayingInfo struct {
	ChannelID    string     `json:"channel_id,omitempty"`
	ChannelTitle string     `json:"channel_title,omitempty"`
	Title        string     `json:"title,omitempty"`
	Image        string     `json:"image,omitempty"`
	SourceType   SourceType `json:"source_type,omitempty"`
	Paused       bool       `json:"paused"`
	// Duration and Position are in seconds.
	Duration           float64   `json:"duration,omitempty"`
	Position           float64   `json:"position,omitempty"`
	LastPositionUpdate time.Time `json:"last_position_update,omitempty"`
}

// Credentials open a session against the vendor backend.
type Credentials struct {
	Provider     config.Provider `json:"provider"`
	Country      string          `json:"country"`
	Username     string          `json:"username"`
	Password     string          `json:"password,omitempty"`
	Identifier   string          `json:"identifier,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
}

// CredentialsFrom extracts the session credentials of cfg.
func CredentialsFrom(cfg config.AppConfig) Credentials {
	return Credentials{
		Provider:     cfg.Provider,
		Country:      cfg.Country,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Identifier:   cfg.Identifier,
		RefreshToken: cfg.RefreshToken,
	}
}

// Command names understood by the bridge.
const (
	CmdTurnOn          = "turn_on"
	CmdTurnOff         = "turn_off"
	CmdPlay            = "play"
	CmdPause           = "pause"
	CmdStop            = "stop"
	CmdNextChannel     = "next_channel"
	CmdPreviousChannel = "previous_channel"
	CmdSetChannel      = "set_channel"
	CmdPlayRecording   = "play_recording"
	CmdSendKey         = "send_key"
	CmdRecord          = "record"
	CmdRewind          = "rewind"
	CmdFastForward     = "fast_forward"
)

// Command is one instruction for a box.
type Command struct {
	Command  string `json:"command"`
	Argument string `json:"argument,omitempty"`
}

type capacityPayload struct {
	Capacity *float64 `json:"capacity"`
}
