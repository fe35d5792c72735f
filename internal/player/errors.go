// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import "errors"

var (
	// ErrInvalidMediaIdentifier rejects a channel media id that is not a
	// positive integer. No command is sent to the box.
	ErrInvalidMediaIdentifier = errors.New("player: media id must be a positive integer")
	ErrUnsupportedMediaType   = errors.New("player: unsupported media type")
	ErrUnknownSource          = errors.New("player: unknown source")
	ErrUnknownContentType     = errors.New("player: unknown browse content type")
	ErrUnknownCommand         = errors.New("player: unknown command")
	ErrUnknownService         = errors.New("player: unknown service")
	ErrMissingRemoteKey       = errors.New("player: remote_key is required")
	ErrUnknownPlayer          = errors.New("player: unknown player")
)
