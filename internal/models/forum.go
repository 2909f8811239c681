// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package models

// VoteSide tallies one direction of a forum item's votes together with the
// voters' student identifiers.
type VoteSide struct {
	Count      any `json:"Count"`
	StudentIDs any `json:"StudentIDs"`
}

// Votes is the normalized vote rollup for a forum thread, post, or comment.
type Votes struct {
	Count     any      `json:"Count"`
	UpVotes   VoteSide `json:"UpVotes"`
	DownVotes VoteSide `json:"DownVotes"`
	Score     any      `json:"Score"`
}

// ForumItemCommon holds the fields shared by every forum entity kind
// (thread, post, comment) in the forum store dump.
type ForumItemCommon struct {
	AbuseFlaggers           any       `json:"AbuseFlaggers"`
	Anonymous               any       `json:"Anonymous"`
	AnonymousToPeers        any       `json:"AnonymousToPeers"`
	AtPositionList          any       `json:"AtPositionList"`
	Text                    any       `json:"Text"`
	HistoricalAbuseFlaggers any       `json:"HistoricalAbuseFlaggers"`
	Visible                 any       `json:"Visible"`
	Votes                   Votes     `json:"Votes"`
	UpdatedAt               TimeStamp `json:"UpdatedAt"`
}

// ThreadMetadata describes a launched thread: the root entity of its own
// subtree, directly under the course forum (depth 1).
type ThreadMetadata struct {
	ItemType         string `json:"ItemType"`
	ThreadID         string `json:"ThreadID"`
	ParentForumID    any    `json:"ParentForumID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	ForumItemCommon
	Closed         any       `json:"Closed"`
	CommentCount   any       `json:"CommentCount"`
	CommentableID  any       `json:"CommentableID"`
	LastActivityAt TimeStamp `json:"LastActivityAt"`
	Pinned         any       `json:"Pinned"`
	TagsArray      any       `json:"TagsArray"`
	ThreadType     any       `json:"ThreadType"`
	Title          any       `json:"Title"`
}

// PostMetadata describes a post on a thread (depth 2).
type PostMetadata struct {
	ItemType         string `json:"ItemType"`
	PostID           string `json:"PostID"`
	ParentThreadID   string `json:"ParentThreadID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	ForumItemCommon
	Endorsed any `json:"Endorsed"`
}

// CommentMetadata describes a comment on a post (depth 3).
type CommentMetadata struct {
	ItemType         string `json:"ItemType"`
	CommentID        string `json:"CommentID"`
	ParentPostID     string `json:"ParentPostID"`
	ParentThreadID   string `json:"ParentThreadID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	ForumItemCommon
	Endorsed any `json:"Endorsed"`
}

// ThreadLaunchMetadata is the event metadata for Forum.Thread.Launch.
type ThreadLaunchMetadata struct {
	EventID          string         `json:"EventID"`
	ParentThreadID   string         `json:"ParentThreadID"`
	DepthInHierarchy int            `json:"DepthInHierarchy"`
	EdxEventTag      string         `json:"EdxEventTag"`
	ThreadMetadata   ThreadMetadata `json:"ThreadMetadata"`
}

// ThreadPostMetadata is the event metadata for Forum.Thread.PostOn.
type ThreadPostMetadata struct {
	EventID          string       `json:"EventID"`
	ParentPostID     string       `json:"ParentPostID"`
	DepthInHierarchy int          `json:"DepthInHierarchy"`
	EdxEventTag      string       `json:"EdxEventTag"`
	PostMetadata     PostMetadata `json:"PostMetadata"`
}

// PostCommentMetadata is the event metadata for Forum.Post.CommentOn.
type PostCommentMetadata struct {
	EventID          string          `json:"EventID"`
	ParentCommentID  string          `json:"ParentCommentID"`
	DepthInHierarchy int             `json:"DepthInHierarchy"`
	EdxEventTag      string          `json:"EdxEventTag"`
	CommentMetadata  CommentMetadata `json:"CommentMetadata"`
}
