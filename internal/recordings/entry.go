// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import "context"

// Kind tags a recording entry. Dispatch always happens on this tag, never on
// the Go type of the value.
type Kind string

const (
	KindSingle  Kind = "single"
	KindShow    Kind = "show"
	KindEpisode Kind = "episode"
)

// Known reports whether k is one of the recognised entry kinds.
func (k Kind) Known() bool {
	switch k {
	case KindSingle, KindShow, KindEpisode:
		return true
	}
	return false
}

// State is the recording state reported by the backend for an episode.
type State string

const (
	StateRecorded State = "recorded"
	StatePlanned  State = "planned"
)

// Entry is one DVR item as returned by the backend.
//
//	single:  ID, Title, Image, Season, Episode
//	show:    ShowID, Title, Image, Children
//	episode: ID, Title, Image, Season, Episode, ShowTitle, EpisodeTitle, State
//
// A zero Season or Episode means the number is absent.
type Entry struct {
	Kind         Kind    `json:"kind"`
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title"`
	Image        string  `json:"image,omitempty"`
	Season       int     `json:"season,omitempty"`
	Episode      int     `json:"episode,omitempty"`
	ShowID       string  `json:"show_id,omitempty"`
	ShowTitle    string  `json:"show_title,omitempty"`
	EpisodeTitle string  `json:"episode_title,omitempty"`
	State        State   `json:"state,omitempty"`
	Children     []Entry `json:"children,omitempty"`
}

// Planned reports whether the entry is scheduled but not yet recorded.
func (e Entry) Planned() bool {
	return e.State == StatePlanned
}

// episodeLike reports whether the entry renders as a single playable item.
func (e Entry) episodeLike() bool {
	return e.Kind == KindSingle || e.Kind == KindEpisode
}

// Show is the result of looking up the contents of one show.
type Show struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Image    string  `json:"image,omitempty"`
	Episodes []Entry `json:"episodes"`
}

// EpisodeFetcher loads the episodes of one show from the backend.
type EpisodeFetcher func(ctx context.Context, showID string) (Show, error)
