// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"fmt"

	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/ManuGH/stbbridge/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// Browse returns one level of the recording tree. An empty content type or
// "main" is the root; "tvshow" (or "show") expands a show; "singles" expands
// the single-recordings directory.
func (p *Player) Browse(ctx context.Context, contentType, contentID string) (*recordings.Node, error) {
	ctx, span := telemetry.Tracer("stbbridge.player").Start(ctx, "stbbridge.player.browse")
	defer span.End()

	level, node, err := p.browse(ctx, contentType, contentID)
	metrics.RecordBrowse(level, err)

	children := 0
	if node != nil {
		children = len(node.Children)
	}
	span.SetAttributes(telemetry.BrowseAttributes(contentType, contentID, children)...)
	span.SetAttributes(telemetry.BoxAttributes(p.boxID, string(p.provider), "")...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "player.browse_failed").
			Str(xglog.FieldContentType, contentType).
			Str(xglog.FieldContentID, contentID).
			Msg("browse failed")
		return nil, err
	}
	return node, nil
}

func (p *Player) browse(ctx context.Context, contentType, contentID string) (string, *recordings.Node, error) {
	switch contentType {
	case "", recordings.ContentTypeRoot:
		entries, err := p.backend.Recordings(ctx)
		if err != nil {
			return "root", nil, fmt.Errorf("%w: %w", recordings.ErrFetchFailed, err)
		}
		return "root", p.builder.BuildRoot(entries), nil

	case recordings.ContentTypeShow, "show":
		node, err := p.builder.ExpandShow(ctx, contentID, p.backend.Show)
		return "show", node, err

	case recordings.ContentTypeSingles:
		entries, err := p.backend.Recordings(ctx)
		if err != nil {
			return "singles", nil, fmt.Errorf("%w: %w", recordings.ErrFetchFailed, err)
		}
		return "singles", p.builder.ExpandSingles(entries), nil

	default:
		return "unknown", nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
}
