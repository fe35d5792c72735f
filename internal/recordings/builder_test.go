// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(shape Shape, style TitleStyle) *Builder {
	nop := zerolog.Nop()
	return NewBuilder(Options{Shape: shape, Style: style, Logger: &nop})
}

func TestBuildRoot_InlineShape(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	entries := []Entry{
		{Kind: KindShow, ShowID: "crid:~~2F~~2Fshow1", Title: "Flikken", Image: "http://img/show1.jpg"},
		{Kind: KindSingle, ID: "rec-1", Title: "Journaal", Image: "http://img/rec1.jpg"},
		{Kind: KindShow, ShowID: "show2", Title: "Nieuwsuur"},
	}

	root := b.BuildRoot(entries)

	assert.False(t, root.CanPlay)
	assert.True(t, root.CanExpand)
	assert.Equal(t, ClassDirectory, root.Class)
	assert.Equal(t, ContentTypeRoot, root.ContentID)
	require.Len(t, root.Children, 3)

	show := root.Children[0]
	assert.Equal(t, "Flikken", show.Title)
	assert.Equal(t, ClassTVShow, show.Class)
	assert.Equal(t, "crid:~~2F~~2Fshow1", show.ContentID)
	assert.True(t, show.CanExpand)
	assert.False(t, show.CanPlay)
	assert.False(t, show.Expanded(), "show directories stay lazy")

	single := root.Children[1]
	assert.Equal(t, "Journaal", single.Title)
	assert.Equal(t, ClassEpisode, single.Class)
	assert.True(t, single.CanPlay)
	assert.False(t, single.CanExpand)
	assert.Equal(t, "http://img/rec1.jpg", single.Thumbnail)

	assert.Equal(t, "Nieuwsuur", root.Children[2].Title, "input order is preserved")
}

func TestBuildRoot_SinglesBucketShape(t *testing.T) {
	b := newTestBuilder(ShapeSinglesBucket, StyleDash)
	entries := []Entry{
		{Kind: KindSingle, ID: "r1", Title: "Movie"},
		{Kind: KindShow, ShowID: "g1", Title: "Show A"},
		{Kind: KindSingle, ID: "r2", Title: "Docu"},
		{Kind: KindShow, ShowID: "g2", Title: "Show B"},
	}

	root := b.BuildRoot(entries)

	require.Len(t, root.Children, 3)
	assert.Equal(t, "Show A", root.Children[0].Title)
	assert.Equal(t, ClassDirectory, root.Children[0].Class)
	assert.Equal(t, "Show B", root.Children[1].Title)

	bucket := root.Children[2]
	assert.Equal(t, DefaultSinglesTitle, bucket.Title)
	assert.Equal(t, ContentTypeSingles, bucket.ContentType)
	assert.True(t, bucket.CanExpand)
	assert.False(t, bucket.CanPlay)
	assert.Nil(t, bucket.Children)
}

func TestBuildRoot_SinglesBucketOmittedWithoutSingles(t *testing.T) {
	b := newTestBuilder(ShapeSinglesBucket, StyleDash)
	root := b.BuildRoot([]Entry{{Kind: KindShow, ShowID: "g1", Title: "Show A"}})
	require.Len(t, root.Children, 1)
	assert.Equal(t, ContentTypeShow, root.Children[0].ContentType)
}

func TestBuildRoot_SkipsUnknownKind(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	entries := []Entry{
		{Kind: KindSingle, ID: "r1", Title: "A"},
		{Kind: Kind("podcast"), ID: "x", Title: "???"},
		{Kind: "", ID: "y"},
		{Kind: KindShow, ShowID: "s1", Title: "B"},
	}

	var root *Node
	require.NotPanics(t, func() { root = b.BuildRoot(entries) })
	require.Len(t, root.Children, 2)
	assert.Equal(t, "A", root.Children[0].Title)
	assert.Equal(t, "B", root.Children[1].Title)
}

func TestBuildRoot_ChildCountMatchesRecognisedEntries(t *testing.T) {
	kinds := []Kind{KindSingle, KindShow, KindEpisode, "bogus", KindSingle, KindShow}
	for _, shape := range []Shape{ShapeInline, ShapeSinglesBucket} {
		var entries []Entry
		recognised, singles := 0, 0
		for i, k := range kinds {
			entries = append(entries, Entry{Kind: k, ID: string(rune('a' + i)), ShowID: string(rune('A' + i))})
			if !k.Known() {
				continue
			}
			if k == KindSingle && shape == ShapeSinglesBucket {
				singles++
				continue
			}
			recognised++
		}
		if singles > 0 {
			recognised++
		}

		root := newTestBuilder(shape, StyleDash).BuildRoot(entries)
		assert.False(t, root.CanPlay)
		assert.Len(t, root.Children, recognised, "shape %d", shape)
	}
}

func TestBuildRoot_Empty(t *testing.T) {
	root := newTestBuilder(ShapeInline, StyleShow).BuildRoot(nil)
	assert.NotNil(t, root.Children)
	assert.Empty(t, root.Children)
}

func TestExpandShow(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	fetch := func(_ context.Context, showID string) (Show, error) {
		assert.Equal(t, "show1", showID)
		return Show{
			ID: "show1",
			Episodes: []Entry{
				{Kind: KindEpisode, ID: "ep1", ShowTitle: "Flikken", Season: 1, Episode: 3, Image: "http://img/ep1.jpg", State: StateRecorded},
				{Kind: KindEpisode, ID: "ep2", ShowTitle: "Flikken", Season: 1, Episode: 4, State: StatePlanned},
			},
		}, nil
	}

	node, err := b.ExpandShow(context.Background(), "show1", fetch)
	require.NoError(t, err)

	assert.Equal(t, "Flikken", node.Title)
	assert.Equal(t, "http://img/ep1.jpg", node.Thumbnail, "thumbnail falls back to the first episode")
	assert.Equal(t, "show1", node.ContentID)
	require.Len(t, node.Children, 2)

	assert.Equal(t, "S01E03: Flikken", node.Children[0].Title)
	assert.True(t, node.Children[0].CanPlay)
	assert.False(t, node.Children[0].CanExpand)

	assert.Equal(t, "S01E04: Flikken (planned)", node.Children[1].Title)
	assert.False(t, node.Children[1].CanPlay)
}

func TestExpandShow_PlayableIsNegationOfPlanned(t *testing.T) {
	states := []State{StatePlanned, StateRecorded, StatePlanned, "", StateRecorded}
	var eps []Entry
	for i, s := range states {
		eps = append(eps, Entry{Kind: KindEpisode, ID: string(rune('a' + i)), Title: "t", State: s})
	}
	b := newTestBuilder(ShapeInline, StyleShow)
	node, err := b.ExpandShow(context.Background(), "s", func(context.Context, string) (Show, error) {
		return Show{Title: "S", Episodes: eps}, nil
	})
	require.NoError(t, err)
	require.Len(t, node.Children, len(eps))
	for i, child := range node.Children {
		assert.Equal(t, states[i] != StatePlanned, child.CanPlay, "episode %d", i)
	}
}

func TestExpandShow_ShowImageWins(t *testing.T) {
	b := newTestBuilder(ShapeSinglesBucket, StyleDash)
	node, err := b.ExpandShow(context.Background(), "g1", func(context.Context, string) (Show, error) {
		return Show{
			ID:    "g1",
			Title: "De Luizenmoeder",
			Image: "http://img/show.jpg",
			Episodes: []Entry{
				{Kind: KindSingle, ID: "r1", Title: "Aflevering 1", Season: 2, Episode: 1, Image: "http://img/r1.jpg"},
				{Kind: KindSingle, ID: "r2", Title: "Aflevering 2", Image: "http://img/r2.jpg"},
			},
		}, nil
	})
	require.NoError(t, err)

	want := &Node{
		Title:         "De Luizenmoeder",
		Class:         ClassDirectory,
		ContentType:   ContentTypeShow,
		ContentID:     "g1",
		CanExpand:     true,
		Thumbnail:     "http://img/show.jpg",
		ChildrenClass: ClassEpisode,
		Children: []*Node{
			{Title: "S02E01 - Aflevering 1", Class: ClassEpisode, ContentType: ContentTypeEpisode, ContentID: "r1", CanPlay: true, Thumbnail: "http://img/r1.jpg"},
			{Title: "Aflevering 2", Class: ClassEpisode, ContentType: ContentTypeEpisode, ContentID: "r2", CanPlay: true, Thumbnail: "http://img/r2.jpg"},
		},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Fatalf("ExpandShow mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandShow_FallbackSkipsUnknownEntries(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	node, err := b.ExpandShow(context.Background(), "s1", func(context.Context, string) (Show, error) {
		return Show{
			ID: "s1",
			Episodes: []Entry{
				{Kind: Kind("trailer"), ID: "t1", ShowTitle: "Trailers", Image: "http://img/t1.jpg"},
				{Kind: KindEpisode, ID: "e1", ShowTitle: "Flikken", Season: 1, Episode: 2, Image: "http://img/e1.jpg"},
			},
		}, nil
	})
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "Flikken", node.Title)
	assert.Equal(t, "http://img/e1.jpg", node.Thumbnail)
}

func TestExpandShow_EmptyListing(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	node, err := b.ExpandShow(context.Background(), "s9", func(context.Context, string) (Show, error) {
		return Show{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "s9", node.Title)
	assert.Empty(t, node.Children)
}

func TestExpandShow_FetchFailure(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	cause := errors.New("connection reset")

	node, err := b.ExpandShow(context.Background(), "s1", func(context.Context, string) (Show, error) {
		return Show{Episodes: []Entry{{Kind: KindEpisode, ID: "half"}}}, cause
	})

	assert.Nil(t, node, "no partial tree on failure")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)

	var lookup *LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "s1", lookup.ShowID)
}

func TestExpandShow_ConcurrentCallsAreIndependent(t *testing.T) {
	b := newTestBuilder(ShapeInline, StyleShow)
	fetch := func(_ context.Context, showID string) (Show, error) {
		return Show{Title: showID, Episodes: []Entry{{Kind: KindEpisode, ID: showID + "-1", Title: showID}}}, nil
	}

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			node, err := b.ExpandShow(context.Background(), id, fetch)
			assert.NoError(t, err)
			assert.Equal(t, id, node.Title)
			assert.Equal(t, id+"-1", node.Children[0].ContentID)
		}(id)
	}
	wg.Wait()
}

func TestExpandSingles(t *testing.T) {
	b := newTestBuilder(ShapeSinglesBucket, StyleDash)
	entries := []Entry{
		{Kind: KindShow, ShowID: "g1", Title: "Show"},
		{Kind: KindSingle, ID: "r1", Title: "Pilot", Season: 1, Episode: 3},
		{Kind: KindSingle, ID: "r2", Title: "Film"},
	}

	node := b.ExpandSingles(entries)

	assert.Equal(t, ContentTypeSingles, node.ContentID)
	require.Len(t, node.Children, 2)
	assert.Equal(t, "S01E03 - Pilot", node.Children[0].Title)
	assert.Equal(t, "Film", node.Children[1].Title)
	for _, c := range node.Children {
		assert.True(t, c.CanPlay)
		assert.False(t, c.CanExpand)
	}
}
