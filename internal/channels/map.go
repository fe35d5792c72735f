// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package channels maps channel display titles to the canonical titles the
// set-top box understands.
package channels

import "strings"

// qualitySuffix is removed from display titles when quality stripping is on.
const qualitySuffix = " HD"

// Channel is one entry of the channel lineup.
type Channel struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Number int    `json:"number,omitempty"`
	Logo   string `json:"logo,omitempty"`
}

// Normalize returns the display title of a channel. With stripQuality every
// " HD" is removed; a title carries it at most once in practice.
func Normalize(title string, stripQuality bool) string {
	if title == "" || !stripQuality {
		return title
	}
	return strings.ReplaceAll(title, qualitySuffix, "")
}

// Map resolves display titles to canonical titles. It is built once and is
// read-only afterwards, so it is safe for concurrent use.
type Map struct {
	stripQuality bool
	order        []string
	canonical    map[string]string
}

// BuildMap builds the display → canonical mapping for channels.
//
// When two channels normalise to the same display title the later one wins
// and the key keeps the position of its first appearance. "News HD" and
// "News" therefore collapse to a single "News" entry.
func BuildMap(channels []Channel, stripQuality bool) *Map {
	m := &Map{
		stripQuality: stripQuality,
		order:        make([]string, 0, len(channels)),
		canonical:    make(map[string]string, len(channels)),
	}
	for _, ch := range channels {
		key := Normalize(ch.Title, stripQuality)
		if _, seen := m.canonical[key]; !seen {
			m.order = append(m.order, key)
		}
		m.canonical[key] = ch.Title
	}
	return m
}

// Resolve returns the canonical title for a display title.
func (m *Map) Resolve(display string) (string, bool) {
	if m == nil {
		return "", false
	}
	c, ok := m.canonical[display]
	return c, ok
}

// Display converts a canonical title, as reported by the box, to the form
// used in the source list.
func (m *Map) Display(canonical string) string {
	if m == nil {
		return canonical
	}
	return Normalize(canonical, m.stripQuality)
}

// Titles returns the display titles in lineup order.
func (m *Map) Titles() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of distinct display titles.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.canonical)
}
