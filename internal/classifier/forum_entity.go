// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/taxonomy"
)

// dateAttr resolves a Mongo extended-JSON date ({"$date": millis}) to a
// normalized timestamp.
func dateAttr(item map[string]any, path string) (models.TimeStamp, bool) {
	v, ok := attr(item, path+".$date")
	if !ok {
		return models.TimeStamp{}, false
	}
	millis, ok := v.(float64)
	if !ok {
		if i, iok := asInt(v); iok {
			millis = float64(i)
		} else {
			return models.TimeStamp{}, false
		}
	}
	return models.TimeStampFromPOSIX(millis / 1000), true
}

// ClassifyForumEntity normalizes one record from a forum content store
// dump. Unlike clickstream traffic, every record here is an authored forum
// item; the entity kind is discriminated by the sort key: threads carry no
// "sk", posts carry the 24-char item id, comments carry the 49-char
// parent-child composite.
func (c *Classifier) ClassifyForumEntity(raw []byte) (*models.CourseEvent, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, malformed(err)
	}

	courseID, ok := stringAttr(item, "course_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	courseID = normalizeCourseID(courseID)
	studentID, ok := attr(item, "author_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	itemID, ok := stringAttr(item, "_id.$oid")
	if !ok {
		return nil, ErrNotClassifiable
	}
	tag, ok := stringAttr(item, "_type")
	if !ok {
		return nil, ErrNotClassifiable
	}
	createdAt, ok := dateAttr(item, "created_at")
	if !ok {
		return nil, ErrNotClassifiable
	}
	updatedAt, ok := dateAttr(item, "updated_at")
	if !ok {
		return nil, ErrNotClassifiable
	}
	if _, ok := mapAttr(item, "votes"); !ok {
		return nil, ErrNotClassifiable
	}

	common := models.ForumItemCommon{
		AbuseFlaggers:           optAttr(item, "abuse_flaggers"),
		Anonymous:               optAttr(item, "anonymous"),
		AnonymousToPeers:        optAttr(item, "anonymous_to_peers"),
		AtPositionList:          optAttr(item, "at_position_list"),
		Text:                    optAttr(item, "body"),
		HistoricalAbuseFlaggers: optAttr(item, "historical_abuse_flaggers"),
		Visible:                 optAttr(item, "visible"),
		Votes: models.Votes{
			Count: optAttr(item, "votes.count"),
			UpVotes: models.VoteSide{
				Count:      optAttr(item, "votes.up_count"),
				StudentIDs: optAttr(item, "votes.up"),
			},
			DownVotes: models.VoteSide{
				Count:      optAttr(item, "votes.down_count"),
				StudentIDs: optAttr(item, "votes.down"),
			},
			Score: optAttr(item, "votes.point"),
		},
		UpdatedAt: updatedAt,
	}

	sk, hasSK := stringAttr(item, "sk")

	switch {
	case !hasSK:
		// No sort key: the item is the thread itself.
		eventType := "Forum.Thread.Launch"
		id := EventID(courseID, studentID, createdAt.ISO8601, eventType)
		lastActivity, ok := dateAttr(item, "last_activity_at")
		if !ok {
			return nil, ErrNotClassifiable
		}
		meta := models.ThreadLaunchMetadata{
			EventID:          id,
			ParentThreadID:   itemID,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      tag,
			ThreadMetadata: models.ThreadMetadata{
				ItemType:         "Thread",
				ThreadID:         itemID,
				ParentForumID:    nil,
				DepthInHierarchy: taxonomy.EntityDepthThread,
				ForumItemCommon:  common,
				Closed:           optAttr(item, "closed"),
				CommentCount:     optAttr(item, "comment_count"),
				CommentableID:    optAttr(item, "commentable_id"),
				LastActivityAt:   lastActivity,
				Pinned:           optAttr(item, "pinned"),
				TagsArray:        optAttr(item, "tags_array"),
				ThreadType:       optAttr(item, "thread_type"),
				Title:            optAttr(item, "title"),
			},
		}
		return buildEvent(courseID, studentID, createdAt, eventType, id, meta), nil

	case len(sk) == 24:
		// Sort key is the item's own id: a post directly on a thread.
		eventType := "Forum.Thread.PostOn"
		id := EventID(courseID, studentID, createdAt.ISO8601, eventType)
		parentThreadID, ok := stringAttr(item, "comment_thread_id.$oid")
		if !ok {
			return nil, ErrNotClassifiable
		}
		meta := models.ThreadPostMetadata{
			EventID:          id,
			ParentPostID:     itemID,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      tag,
			PostMetadata: models.PostMetadata{
				ItemType:         "Post",
				PostID:           itemID,
				ParentThreadID:   parentThreadID,
				DepthInHierarchy: taxonomy.EntityDepthPost,
				ForumItemCommon:  common,
				Endorsed:         optAttr(item, "endorsed"),
			},
		}
		return buildEvent(courseID, studentID, createdAt, eventType, id, meta), nil

	case len(sk) == 49:
		// Sort key is "parent-child": a comment nested under a post.
		eventType := "Forum.Post.CommentOn"
		id := EventID(courseID, studentID, createdAt.ISO8601, eventType)
		parentPostID, ok := stringAttr(item, "parent_id.$oid")
		if !ok {
			return nil, ErrNotClassifiable
		}
		parentThreadID, ok := stringAttr(item, "comment_thread_id.$oid")
		if !ok {
			return nil, ErrNotClassifiable
		}
		meta := models.PostCommentMetadata{
			EventID:          id,
			ParentCommentID:  itemID,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      tag,
			CommentMetadata: models.CommentMetadata{
				ItemType:         "Comment",
				CommentID:        itemID,
				ParentPostID:     parentPostID,
				ParentThreadID:   parentThreadID,
				DepthInHierarchy: taxonomy.EntityDepthComment,
				ForumItemCommon:  common,
				Endorsed:         optAttr(item, "endorsed"),
			},
		}
		return buildEvent(courseID, studentID, createdAt, eventType, id, meta), nil
	}

	// Sort key of an unexpected length: not a known entity kind.
	return nil, ErrNotClassifiable
}
