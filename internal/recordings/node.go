// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recordings

// MediaClass describes how a browse node is presented.
type MediaClass string

const (
	ClassDirectory MediaClass = "directory"
	ClassTVShow    MediaClass = "tv_show"
	ClassEpisode   MediaClass = "episode"
)

// Content types used as browse and play identifiers.
const (
	ContentTypeRoot    = "main"
	ContentTypeShow    = "tvshow"
	ContentTypeSingles = "singles"
	ContentTypeEpisode = "episode"
)

// Node is one unit of the browsable recordings tree.
//
// A directory with CanExpand set that was produced by BuildRoot carries nil
// Children; its contents are produced by a separate expand call.
type Node struct {
	Title         string     `json:"title"`
	Class         MediaClass `json:"media_class"`
	ContentType   string     `json:"media_content_type"`
	ContentID     string     `json:"media_content_id"`
	CanPlay       bool       `json:"can_play"`
	CanExpand     bool       `json:"can_expand"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	ChildrenClass MediaClass `json:"children_media_class,omitempty"`
	Children      []*Node    `json:"children,omitempty"`
}

// Expanded reports whether the node's children have been populated.
func (n *Node) Expanded() bool {
	return n.Children != nil
}

func episodeNode(e Entry, style TitleStyle) *Node {
	return &Node{
		Title:       FormatTitle(e, style),
		Class:       ClassEpisode,
		ContentType: ContentTypeEpisode,
		ContentID:   e.ID,
		CanPlay:     !e.Planned(),
		CanExpand:   false,
		Thumbnail:   e.Image,
	}
}
