// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"encoding/json"
	"testing"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrisDecoder_Show(t *testing.T) {
	raw := json.RawMessage(`{"show":{"media_group_id":"g1","title":"De Luizenmoeder","image":"http://img/g1.jpg","children":[
		{"recording":{"recording_id":"r1","title":"Aflevering 1","season":2,"episode":1}},
		{"other":{}}
	]}}`)

	show, err := arrisDecoder{}.show("g1", raw)
	require.NoError(t, err)

	want := recordings.Show{
		ID:    "g1",
		Title: "De Luizenmoeder",
		Image: "http://img/g1.jpg",
		Episodes: []recordings.Entry{
			{Kind: recordings.KindSingle, ID: "r1", Title: "Aflevering 1", Season: 2, Episode: 1, State: recordings.StateRecorded},
			{Kind: recordings.Kind("unknown:child")},
		},
	}
	if diff := cmp.Diff(want, show); diff != "" {
		t.Fatalf("show mismatch (-want +got):\n%s", diff)
	}
}

func TestArrisDecoder_ShowMissingObject(t *testing.T) {
	_, err := arrisDecoder{}.show("g1", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestHorizonDecoder_Recordings(t *testing.T) {
	raw := json.RawMessage(`[
		{"kind":"season_show","showId":"s1","title":"Flikken","image":"i1"},
		{"kind":"single","id":"r1","title":"Journaal","recordingState":"planned"},
		{"kind":"show","showId":"s2"}
	]`)

	entries, err := horizonDecoder{}.recordings(raw)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, recordings.KindShow, entries[0].Kind)
	assert.Equal(t, "s1", entries[0].ShowID)
	assert.Equal(t, recordings.KindSingle, entries[1].Kind)
	assert.True(t, entries[1].Planned())
	assert.False(t, entries[2].Kind.Known(), "a bare show tag is not a top-level kind")
}

func TestDecoderFor(t *testing.T) {
	assert.IsType(t, arrisDecoder{}, decoderFor(config.ProviderArris))
	assert.IsType(t, horizonDecoder{}, decoderFor(config.ProviderHorizon))
}
