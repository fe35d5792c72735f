// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import "testing"

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		style TitleStyle
		want  string
	}{
		{
			name:  "dash style with numbers",
			entry: Entry{Title: "Pilot", Season: 1, Episode: 3},
			style: StyleDash,
			want:  "S01E03 - Pilot",
		},
		{
			name:  "show style with numbers",
			entry: Entry{Title: "Pilot", ShowTitle: "ShowTitle", Season: 1, Episode: 3},
			style: StyleShow,
			want:  "S01E03: ShowTitle",
		},
		{
			name:  "show style with episode title",
			entry: Entry{ShowTitle: "Flikken", EpisodeTitle: "Zwarte zee", Season: 12, Episode: 7},
			style: StyleShow,
			want:  "S12E07: Flikken - Zwarte zee",
		},
		{
			name:  "missing episode number falls back to bare title",
			entry: Entry{Title: "Pilot", Season: 1},
			style: StyleDash,
			want:  "Pilot",
		},
		{
			name:  "missing season number falls back to bare title",
			entry: Entry{Title: "Pilot", Episode: 2},
			style: StyleDash,
			want:  "Pilot",
		},
		{
			name:  "show style without show title uses entry title",
			entry: Entry{Title: "Journaal"},
			style: StyleShow,
			want:  "Journaal",
		},
		{
			name:  "planned suffix",
			entry: Entry{Title: "Pilot", Season: 1, Episode: 3, State: StatePlanned},
			style: StyleDash,
			want:  "S01E03 - Pilot (planned)",
		},
		{
			name:  "three digit numbers are not truncated",
			entry: Entry{Title: "Soap", Season: 1, Episode: 123},
			style: StyleDash,
			want:  "S01E123 - Soap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTitle(tt.entry, tt.style); got != tt.want {
				t.Errorf("FormatTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
