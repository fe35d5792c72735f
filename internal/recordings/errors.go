// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntryKind marks an entry whose kind tag is not recognised.
	// Builders skip such entries instead of failing.
	ErrUnknownEntryKind = errors.New("recordings: unknown entry kind")
	// ErrFetchFailed is matched by every error returned when the episode
	// lookup of a show fails.
	ErrFetchFailed = errors.New("recordings: recording lookup failed")
)

// LookupError wraps a failed show lookup.
type LookupError struct {
	ShowID string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("recording lookup failed for show %q: %v", e.ShowID, e.Err)
}

// Is makes errors.Is(err, ErrFetchFailed) hold for any LookupError.
func (e *LookupError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
