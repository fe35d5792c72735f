// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/stbbridge/internal/backend"
	xglog "github.com/ManuGH/stbbridge/internal/log"
)

// State is the media player state.
type State string

const (
	StatePlaying     State = "playing"
	StatePaused      State = "paused"
	StateOff         State = "off"
	StateUnavailable State = "unavailable"
)

// Feature is a supported-feature bit. Values follow the media player
// feature flags used by home automation front-ends.
type Feature uint32

const (
	FeaturePause         Feature = 1
	FeaturePreviousTrack Feature = 16
	FeatureNextTrack     Feature = 32
	FeatureTurnOn        Feature = 128
	FeatureTurnOff       Feature = 256
	FeaturePlayMedia     Feature = 512
	FeatureSelectSource  Feature = 2048
	FeatureStop          Feature = 4096
	FeaturePlay          Feature = 16384
	FeatureBrowseMedia   Feature = 131072
)

const baseFeatures = FeaturePlay | FeaturePause | FeatureStop | FeatureTurnOn |
	FeatureTurnOff | FeatureSelectSource | FeaturePlayMedia | FeatureBrowseMedia

// Has reports whether f includes all bits of other.
func (f Feature) Has(other Feature) bool {
	return f&other == other
}

// Status is a snapshot of one box.
type Status struct {
	BoxID             string     `json:"box_id"`
	Name              string     `json:"name"`
	State             State      `json:"state"`
	Source            string     `json:"source,omitempty"`
	SourceList        []string   `json:"source_list"`
	MediaTitle        string     `json:"media_title,omitempty"`
	MediaImageURL     string     `json:"media_image_url,omitempty"`
	MediaDuration     *float64   `json:"media_duration,omitempty"`
	MediaPosition     *float64   `json:"media_position,omitempty"`
	PositionUpdatedAt *time.Time `json:"media_position_updated_at,omitempty"`
	SupportedFeatures Feature    `json:"supported_features"`
	Attributes        Attributes `json:"attributes"`
}

// Attributes are the device specific extras of a Status.
type Attributes struct {
	PlayMode          backend.SourceType `json:"play_mode,omitempty"`
	Channel           string             `json:"channel,omitempty"`
	Title             string             `json:"title,omitempty"`
	Image             string             `json:"image,omitempty"`
	RecordingCapacity *float64           `json:"recording_capacity,omitempty"`
}

// Status fetches the box and renders its media player state. A box the
// backend cannot reach is reported unavailable, not as an error.
func (p *Player) Status(ctx context.Context) (Status, error) {
	box, err := p.backend.Box(ctx, p.boxID)
	if err != nil {
		if ctx.Err() != nil {
			return Status{}, err
		}
		p.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "player.status_unavailable").
			Msg("box lookup failed, reporting unavailable")
		return p.unavailable(), nil
	}

	info := box.Playing
	st := Status{
		BoxID:             p.boxID,
		Name:              p.name,
		State:             mapState(box),
		Source:            p.sourceFor(info.ChannelTitle),
		SourceList:        p.channels.Titles(),
		MediaTitle:        info.Title,
		MediaImageURL:     mediaImageURL(info),
		SupportedFeatures: supportedFeatures(info.SourceType),
		Attributes: Attributes{
			PlayMode: info.SourceType,
			Channel:  info.ChannelTitle,
			Title:    info.Title,
			Image:    info.Image,
		},
	}
	if box.Name != "" {
		st.Name = box.Name
	}
	if info.Duration > 0 {
		d := info.Duration
		st.MediaDuration = &d
	}
	if info.Position > 0 {
		pos := float64(int(info.Position))
		st.MediaPosition = &pos
		if !info.LastPositionUpdate.IsZero() {
			at := info.LastPositionUpdate.UTC()
			st.PositionUpdatedAt = &at
		}
	}
	if p.capacity != nil {
		if pct, ok := p.capacity.Value(ctx); ok {
			st.Attributes.RecordingCapacity = &pct
		}
	}
	return st, nil
}

func (p *Player) unavailable() Status {
	return Status{
		BoxID:             p.boxID,
		Name:              p.name,
		State:             StateUnavailable,
		SourceList:        p.channels.Titles(),
		SupportedFeatures: supportedFeatures(""),
	}
}

func mapState(box backend.Box) State {
	switch box.State {
	case backend.BoxOnlineRunning:
		if box.Playing.Paused {
			return StatePaused
		}
		return StatePlaying
	case backend.BoxOnlineStandby:
		return StateOff
	default:
		return StateUnavailable
	}
}

// supportedFeatures drops channel zapping while an app owns the screen.
func supportedFeatures(source backend.SourceType) Feature {
	if source == backend.SourceApp {
		return baseFeatures
	}
	return baseFeatures | FeatureNextTrack | FeaturePreviousTrack
}

// sourceFor renders the current channel the way it appears in the source
// list.
func (p *Player) sourceFor(channelTitle string) string {
	return p.channels.Display(channelTitle)
}

// mediaImageURL appends a random query parameter to live channel artwork so
// front-ends do not keep showing a cached still.
func mediaImageURL(info backend.PlayingInfo) string {
	if info.Image == "" {
		return ""
	}
	if info.SourceType != backend.SourceLinear {
		return info.Image
	}
	join := "?"
	if strings.Contains(info.Image, "?") {
		join = "&"
	}
	return info.Image + join + strconv.Itoa(rand.IntN(1000000)) // #nosec G404 -- cache buster only
}
