// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"encoding/json"
	"fmt"

	"github.com/ManuGH/stbbridge/internal/recordings"
)

// Arris listings wrap every item: {"type": "show", "show": {...}} or
// {"type": "recording", "recording": {...}}.
type arrisItem struct {
	Type      string          `json:"type"`
	Show      *arrisShow      `json:"show,omitempty"`
	Recording *arrisRecording `json:"recording,omitempty"`
}

type arrisShow struct {
	MediaGroupID string       `json:"media_group_id"`
	Title        string       `json:"title"`
	Image        string       `json:"image"`
	Children     []arrisChild `json:"children"`
}

type arrisChild struct {
	Recording *arrisRecording `json:"recording"`
}

type arrisRecording struct {
	RecordingID string `json:"recording_id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Season      int    `json:"season"`
	Episode     int    `json:"episode"`
}

func (r arrisRecording) entry() recordings.Entry {
	return recordings.Entry{
		Kind:    recordings.KindSingle,
		ID:      r.RecordingID,
		Title:   r.Title,
		Image:   r.Image,
		Season:  r.Season,
		Episode: r.Episode,
		State:   recordings.StateRecorded,
	}
}

type arrisDecoder struct{}

func (arrisDecoder) recordings(raw json.RawMessage) ([]recordings.Entry, error) {
	var items []arrisItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode arris recordings: %w", err)
	}

	entries := make([]recordings.Entry, 0, len(items))
	for _, it := range items {
		switch {
		case it.Type == "show" && it.Show != nil:
			entries = append(entries, recordings.Entry{
				Kind:   recordings.KindShow,
				ShowID: it.Show.MediaGroupID,
				Title:  it.Show.Title,
				Image:  it.Show.Image,
			})
		case it.Type == "recording" && it.Recording != nil:
			entries = append(entries, it.Recording.entry())
		default:
			entries = append(entries, recordings.Entry{Kind: unknownKind(it.Type)})
		}
	}
	return entries, nil
}

func (arrisDecoder) show(showID string, raw json.RawMessage) (recordings.Show, error) {
	var payload struct {
		Show *arrisShow `json:"show"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return recordings.Show{}, fmt.Errorf("decode arris show: %w", err)
	}
	if payload.Show == nil {
		return recordings.Show{}, fmt.Errorf("decode arris show: missing \"show\" object")
	}

	s := payload.Show
	show := recordings.Show{
		ID:       showID,
		Title:    s.Title,
		Image:    s.Image,
		Episodes: make([]recordings.Entry, 0, len(s.Children)),
	}
	for _, child := range s.Children {
		if child.Recording == nil {
			show.Episodes = append(show.Episodes, recordings.Entry{Kind: unknownKind("child")})
			continue
		}
		show.Episodes = append(show.Episodes, child.Recording.entry())
	}
	return show, nil
}
