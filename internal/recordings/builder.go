// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import (
	"context"

	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/rs/zerolog"
)

// Shape is the grouping scheme a vendor uses for top-level recordings.
type Shape int

const (
	// ShapeInline places single recordings directly under the root.
	ShapeInline Shape = iota
	// ShapeSinglesBucket collects single recordings under one synthesized
	// directory next to the shows.
	ShapeSinglesBucket
)

const (
	DefaultRootTitle    = "Recordings"
	DefaultSinglesTitle = "Single recordings"
)

// Options configures a Builder.
type Options struct {
	Shape        Shape
	Style        TitleStyle
	RootTitle    string
	SinglesTitle string
	Logger       *zerolog.Logger
}

// Builder turns backend recording entries into browse trees. It holds no
// mutable state; one Builder may serve concurrent requests.
type Builder struct {
	shape        Shape
	style        TitleStyle
	rootTitle    string
	singlesTitle string
	logger       zerolog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		shape:        opts.Shape,
		style:        opts.Style,
		rootTitle:    opts.RootTitle,
		singlesTitle: opts.SinglesTitle,
	}
	if b.rootTitle == "" {
		b.rootTitle = DefaultRootTitle
	}
	if b.singlesTitle == "" {
		b.singlesTitle = DefaultSinglesTitle
	}
	if opts.Logger != nil {
		b.logger = *opts.Logger
	} else {
		b.logger = xglog.WithComponent("recordings")
	}
	return b
}

// BuildRoot produces the root of the browse tree. Input order is kept.
// Entries of unknown kind are skipped with a warning.
func (b *Builder) BuildRoot(entries []Entry) *Node {
	root := &Node{
		Title:         b.rootTitle,
		Class:         ClassDirectory,
		ContentType:   ContentTypeRoot,
		ContentID:     ContentTypeRoot,
		CanPlay:       false,
		CanExpand:     true,
		ChildrenClass: ClassDirectory,
		Children:      []*Node{},
	}

	singles := 0
	for _, e := range entries {
		switch e.Kind {
		case KindShow:
			root.Children = append(root.Children, b.showNode(e))
		case KindSingle:
			if b.shape == ShapeSinglesBucket {
				singles++
				continue
			}
			root.Children = append(root.Children, episodeNode(e, b.style))
		case KindEpisode:
			root.Children = append(root.Children, episodeNode(e, b.style))
		default:
			b.skip(e)
		}
	}

	if singles > 0 {
		root.Children = append(root.Children, b.singlesBucket(nil))
	}
	return root
}

// ExpandShow loads the episodes of showID through fetch and returns the show
// directory with its episodes. A failed lookup yields a *LookupError and no
// node.
func (b *Builder) ExpandShow(ctx context.Context, showID string, fetch EpisodeFetcher) (*Node, error) {
	show, err := fetch(ctx, showID)
	if err != nil {
		return nil, &LookupError{ShowID: showID, Err: err}
	}

	node := &Node{
		Title:         show.Title,
		Class:         ClassDirectory,
		ContentType:   ContentTypeShow,
		ContentID:     showID,
		CanPlay:       false,
		CanExpand:     true,
		Thumbnail:     show.Image,
		ChildrenClass: ClassEpisode,
		Children:      make([]*Node, 0, len(show.Episodes)),
	}

	var first *Entry
	for i, e := range show.Episodes {
		if !e.episodeLike() {
			b.skip(e)
			continue
		}
		if first == nil {
			first = &show.Episodes[i]
		}
		node.Children = append(node.Children, episodeNode(e, b.style))
	}

	// Fallbacks come from the first rendered episode, never a skipped entry.
	if first != nil {
		if node.Title == "" {
			node.Title = first.ShowTitle
		}
		if node.Thumbnail == "" {
			node.Thumbnail = first.Image
		}
	}
	if node.Title == "" {
		node.Title = showID
	}
	return node, nil
}

// ExpandSingles returns the singles directory filled with every single
// recording found in entries.
func (b *Builder) ExpandSingles(entries []Entry) *Node {
	children := []*Node{}
	for _, e := range entries {
		if e.Kind != KindSingle {
			continue
		}
		children = append(children, episodeNode(e, b.style))
	}
	return b.singlesBucket(children)
}

func (b *Builder) showNode(e Entry) *Node {
	class := ClassTVShow
	if b.shape == ShapeSinglesBucket {
		class = ClassDirectory
	}
	return &Node{
		Title:         e.Title,
		Class:         class,
		ContentType:   ContentTypeShow,
		ContentID:     e.ShowID,
		CanPlay:       false,
		CanExpand:     true,
		Thumbnail:     e.Image,
		ChildrenClass: ClassEpisode,
	}
}

func (b *Builder) singlesBucket(children []*Node) *Node {
	return &Node{
		Title:         b.singlesTitle,
		Class:         ClassDirectory,
		ContentType:   ContentTypeSingles,
		ContentID:     ContentTypeSingles,
		CanPlay:       false,
		CanExpand:     true,
		ChildrenClass: ClassEpisode,
		Children:      children,
	}
}

func (b *Builder) skip(e Entry) {
	metrics.RecordSkippedEntry(string(e.Kind))
	b.logger.Warn().
		Err(ErrUnknownEntryKind).
		Str(xglog.FieldEvent, "recordings.entry_skipped").
		Str(xglog.FieldKind, string(e.Kind)).
		Str(xglog.FieldEntryID, firstNonEmpty(e.ID, e.ShowID)).
		Msg("skipping recording entry of unknown kind")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
