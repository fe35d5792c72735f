// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"encoding/json"
	"fmt"

	"github.com/ManuGH/stbbridge/internal/recordings"
)

// Horizon listings are flat objects discriminated by "kind".
type horizonItem struct {
	Kind           string `json:"kind"`
	ID             string `json:"id"`
	ShowID         string `json:"showId"`
	EpisodeID      string `json:"episodeId"`
	Title          string `json:"title"`
	ShowTitle      string `json:"showTitle"`
	EpisodeTitle   string `json:"episodeTitle"`
	SeasonNumber   int    `json:"seasonNumber"`
	EpisodeNumber  int    `json:"episodeNumber"`
	RecordingState string `json:"recordingState"`
	Image          string `json:"image"`
}

func (it horizonItem) state() recordings.State {
	if it.RecordingState == "planned" {
		return recordings.StatePlanned
	}
	return recordings.StateRecorded
}

type horizonDecoder struct{}

func (horizonDecoder) recordings(raw json.RawMessage) ([]recordings.Entry, error) {
	var items []horizonItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode horizon recordings: %w", err)
	}

	entries := make([]recordings.Entry, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case "season_show":
			entries = append(entries, recordings.Entry{
				Kind:   recordings.KindShow,
				ShowID: it.ShowID,
				Title:  it.Title,
				Image:  it.Image,
			})
		case "single":
			entries = append(entries, recordings.Entry{
				Kind:  recordings.KindSingle,
				ID:    it.ID,
				Title: it.Title,
				Image: it.Image,
				State: it.state(),
			})
		default:
			entries = append(entries, recordings.Entry{Kind: unknownKind(it.Kind), ID: it.ID})
		}
	}
	return entries, nil
}

// show decodes a season listing. Both "episode" and "show" items are
// episodes of the show; the latter carry no episode title.
func (horizonDecoder) show(showID string, raw json.RawMessage) (recordings.Show, error) {
	var items []horizonItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return recordings.Show{}, fmt.Errorf("decode horizon show: %w", err)
	}

	show := recordings.Show{ID: showID, Episodes: make([]recordings.Entry, 0, len(items))}
	for _, it := range items {
		e := recordings.Entry{
			ID:        it.EpisodeID,
			Title:     it.ShowTitle,
			Image:     it.Image,
			Season:    it.SeasonNumber,
			Episode:   it.EpisodeNumber,
			ShowID:    showID,
			ShowTitle: it.ShowTitle,
			State:     it.state(),
		}
		switch it.Kind {
		case "episode":
			e.Kind = recordings.KindEpisode
			e.EpisodeTitle = it.EpisodeTitle
		case "show":
			e.Kind = recordings.KindEpisode
		default:
			e.Kind = unknownKind(it.Kind)
		}
		show.Episodes = append(show.Episodes, e)
	}
	return show, nil
}
