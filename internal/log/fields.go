// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldBoxID     = "box_id"
	FieldShowID    = "show_id"
	FieldEntryID   = "entry_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldProvider  = "provider"
	FieldCommand   = "command"
	FieldService   = "service_name"

	// Media fields
	FieldContentType = "content_type"
	FieldContentID   = "content_id"
	FieldMediaType   = "media_type"
	FieldSource      = "source"
	FieldKind        = "kind"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
