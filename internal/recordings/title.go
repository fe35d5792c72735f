// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import "fmt"

// TitleStyle selects how episode titles are rendered.
type TitleStyle int

const (
	// StyleDash renders "S01E03 - Pilot".
	StyleDash TitleStyle = iota
	// StyleShow renders "S01E03: Show" or "S01E03: Show - Pilot".
	StyleShow
)

const plannedSuffix = " (planned)"

// FormatTitle renders the display title of an episode-like entry.
func FormatTitle(e Entry, style TitleStyle) string {
	base := e.Title
	sep := " - "
	if style == StyleShow {
		sep = ": "
		if e.ShowTitle != "" {
			base = e.ShowTitle
			if e.EpisodeTitle != "" && e.EpisodeTitle != e.ShowTitle {
				base += " - " + e.EpisodeTitle
			}
		}
	}

	title := base
	if e.Season > 0 && e.Episode > 0 {
		title = fmt.Sprintf("S%02dE%02d%s%s", e.Season, e.Episode, sep, base)
	}
	if e.Planned() {
		title += plannedSuffix
	}
	return title
}
