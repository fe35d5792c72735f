// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnauthorized = errors.New("backend: credentials rejected")
	ErrNotFound     = errors.New("backend: resource not found")
	ErrRejected     = errors.New("backend: request rejected")
	ErrUnavailable  = errors.New("backend: host unreachable or transport failure")
	ErrUpstream     = errors.New("backend: internal error (5xx)")
	ErrBadResponse  = errors.New("backend: invalid response format or malformed data")
	ErrTimeout      = errors.New("backend: request timed out")
)

// Error wraps a sentinel with the failed operation and what the bridge
// answered.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("backend: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func sentinelForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrUpstream
	default:
		return ErrRejected
	}
}
