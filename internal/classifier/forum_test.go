// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"errors"
	"testing"

	"github.com/epfl-cede/pyedx/internal/models"
)

const (
	testThreadOID  = "52f1e51a5b1ab4128d000faa"
	testPostOID    = "53016db98a2cdf67da00182e"
	testCommentOID = "5310a6cf69f3cd4ab3001936"
)

func TestStripObjectIDs(t *testing.T) {
	tests := []struct {
		matched string
		want    string
	}{
		{"threads/" + testThreadOID + "/upvote", "threads/[^/]*/upvote"},
		{"comments/" + testPostOID + "/delete", "comments/[^/]*/delete"},
		{"forum/i4x-EPFLx-CS305-course-2014/threads/" + testThreadOID, "forum/[^/]*/threads/[^/]*"},
		{"forum/i4x-EPFLx-CS305-course-2014/inline", "forum/[^/]*/inline"},
		{"forum/users/4217", "forum/users/[^/]*"},
		{"forum", "forum"},
		{"forum/search", "forum/search"},
	}
	for _, tt := range tests {
		if got := stripObjectIDs(tt.matched); got != tt.want {
			t.Errorf("stripObjectIDs(%q) = %q, want %q", tt.matched, got, tt.want)
		}
	}
}

func TestClassifyForum_ThreadView(t *testing.T) {
	ev := classify(t, `{
		"event_type": "/courses/EPFLx/CS305/2014/discussion/forum/i4x-EPFLx-CS305-course-2014/threads/`+testThreadOID+`",
		"context": {"course_id": "EPFLx/CS305/2014", "user_id": 42},
		"time": "2014-01-15T09:30:00+00:00"
	}`)
	if ev.Event.EventType != "Forum.Thread.View" {
		t.Errorf("EventType = %q, want Forum.Thread.View", ev.Event.EventType)
	}
	meta, ok := ev.Event.EventMetadata.(models.ForumThreadMetadata)
	if !ok {
		t.Fatalf("EventMetadata is %T, want ForumThreadMetadata", ev.Event.EventMetadata)
	}
	if meta.ParentThreadID != testThreadOID {
		t.Errorf("ParentThreadID = %q, want %q", meta.ParentThreadID, testThreadOID)
	}
	if meta.DepthInHierarchy != 2 {
		t.Errorf("DepthInHierarchy = %d, want 2", meta.DepthInHierarchy)
	}
}

func TestClassifyForum_PostUpvote(t *testing.T) {
	ev := classify(t, `{
		"event_type": "/courses/EPFLx/CS305/2014/discussion/comments/`+testPostOID+`/upvote",
		"context": {"course_id": "EPFLx/CS305/2014", "user_id": 42},
		"time": "2014-01-15T09:30:00+00:00"
	}`)
	if ev.Event.EventType != "Forum.Post.Upvote" {
		t.Errorf("EventType = %q, want Forum.Post.Upvote", ev.Event.EventType)
	}
	meta, ok := ev.Event.EventMetadata.(models.ForumPostMetadata)
	if !ok {
		t.Fatalf("EventMetadata is %T, want ForumPostMetadata", ev.Event.EventMetadata)
	}
	if meta.ParentPostID != testPostOID {
		t.Errorf("ParentPostID = %q, want %q", meta.ParentPostID, testPostOID)
	}
	if meta.DepthInHierarchy != 3 {
		t.Errorf("DepthInHierarchy = %d, want 3", meta.DepthInHierarchy)
	}
}

func TestClassifyForum_Load(t *testing.T) {
	ev := classify(t, `{
		"event_type": "/courses/EPFLx/CS305/2014/discussion/forum",
		"context": {"course_id": "EPFLx/CS305/2014", "user_id": 42},
		"time": "2014-01-15T09:30:00+00:00"
	}`)
	if ev.Event.EventType != "Forum.Load" {
		t.Errorf("EventType = %q, want Forum.Load", ev.Event.EventType)
	}
	meta, ok := ev.Event.EventMetadata.(models.ForumRootMetadata)
	if !ok {
		t.Fatalf("EventMetadata is %T, want ForumRootMetadata", ev.Event.EventMetadata)
	}
	if meta.ParentForumID != nil {
		t.Errorf("ParentForumID = %v, want nil", meta.ParentForumID)
	}
	if meta.DepthInHierarchy != 1 {
		t.Errorf("DepthInHierarchy = %d, want 1", meta.DepthInHierarchy)
	}
}

func TestClassifyForum_ReplyDroppedByTaxonomy(t *testing.T) {
	// Replies match a pattern but carry no taxonomy entry: the durable
	// record arrives through the forum store dump instead.
	mustDrop(t, `{
		"event_type": "/courses/EPFLx/CS305/2014/discussion/threads/`+testThreadOID+`/reply",
		"context": {"course_id": "EPFLx/CS305/2014", "user_id": 42},
		"time": "2014-01-15T09:30:00+00:00"
	}`)
}

func TestClassifyForum_StringStudentIDAccepted(t *testing.T) {
	// Forum click records keep the student id as-is; no integer constraint.
	ev := classify(t, `{
		"event_type": "/courses/EPFLx/CS305/2014/discussion/forum/search",
		"context": {"course_id": "EPFLx/CS305/2014", "user_id": "42"},
		"time": "2014-01-15T09:30:00+00:00"
	}`)
	if ev.Event.StudentID != "42" {
		t.Errorf("StudentID = %v, want string 42", ev.Event.StudentID)
	}
	if ev.Event.EventType != "Forum.Search" {
		t.Errorf("EventType = %q, want Forum.Search", ev.Event.EventType)
	}
}

func forumEntityBase() string {
	return `
		"course_id": "EPFLx/CS305/2014",
		"author_id": "4217",
		"author_username": "jdoe",
		"_id": {"$oid": "` + testThreadOID + `"},
		"_type": "CommentThread",
		"body": "How do I submit?",
		"anonymous": false,
		"anonymous_to_peers": false,
		"abuse_flaggers": [],
		"historical_abuse_flaggers": [],
		"at_position_list": [],
		"visible": true,
		"votes": {"count": 3, "up_count": 2, "down_count": 1, "up": ["1", "2"], "down": ["3"], "point": 1},
		"created_at": {"$date": 1393863545816},
		"updated_at": {"$date": 1393863545816}`
}

func TestClassifyForumEntity_Thread(t *testing.T) {
	ev, err := New().ClassifyForumEntity([]byte(`{` + forumEntityBase() + `,
		"last_activity_at": {"$date": 1393870000000},
		"closed": false,
		"comment_count": 5,
		"commentable_id": "i4x-EPFLx-CS305",
		"pinned": false,
		"tags_array": [],
		"thread_type": "question",
		"title": "Submission question"
	}`))
	if err != nil {
		t.Fatalf("ClassifyForumEntity() error = %v", err)
	}
	if ev.Event.EventType != "Forum.Thread.Launch" {
		t.Errorf("EventType = %q, want Forum.Thread.Launch", ev.Event.EventType)
	}
	if ev.CourseID != "EPFLx-CS305-2014" {
		t.Errorf("CourseID = %q, want EPFLx-CS305-2014", ev.CourseID)
	}
	meta, ok := ev.Event.EventMetadata.(models.ThreadLaunchMetadata)
	if !ok {
		t.Fatalf("EventMetadata is %T, want ThreadLaunchMetadata", ev.Event.EventMetadata)
	}
	if meta.DepthInHierarchy != 2 {
		t.Errorf("event depth = %d, want 2", meta.DepthInHierarchy)
	}
	if meta.ParentThreadID != testThreadOID {
		t.Errorf("ParentThreadID = %q, want %q", meta.ParentThreadID, testThreadOID)
	}
	if meta.EdxEventTag != "CommentThread" {
		t.Errorf("EdxEventTag = %q, want CommentThread", meta.EdxEventTag)
	}
	thread := meta.ThreadMetadata
	if thread.ItemType != "Thread" || thread.DepthInHierarchy != 1 {
		t.Errorf("entity = (%q, depth %d), want (Thread, 1)", thread.ItemType, thread.DepthInHierarchy)
	}
	if thread.ThreadID != testThreadOID {
		t.Errorf("ThreadID = %q, want %q", thread.ThreadID, testThreadOID)
	}
	if thread.Title != "Submission question" {
		t.Errorf("Title = %v, want Submission question", thread.Title)
	}
	if thread.Votes.Count != float64(3) || thread.Votes.Score != float64(1) {
		t.Errorf("votes rollup = (%v, %v), want (3, 1)", thread.Votes.Count, thread.Votes.Score)
	}
	if thread.Votes.UpVotes.Count != float64(2) || thread.Votes.DownVotes.Count != float64(1) {
		t.Errorf("vote sides = (%v, %v), want (2, 1)", thread.Votes.UpVotes.Count, thread.Votes.DownVotes.Count)
	}
	// Mongo $date is in milliseconds.
	if got := ev.Event.TimeStamp.POSIX; got < 1393863545.815 || got > 1393863545.817 {
		t.Errorf("created POSIX = %v, want ~1393863545.816", got)
	}
	if got := thread.LastActivityAt.POSIX; got != 1393870000 {
		t.Errorf("LastActivityAt POSIX = %v, want 1393870000", got)
	}
}

func TestClassifyForumEntity_Post(t *testing.T) {
	ev, err := New().ClassifyForumEntity([]byte(`{` + forumEntityBase() + `,
		"_type": "Comment",
		"sk": "` + testPostOID + `",
		"comment_thread_id": {"$oid": "` + testThreadOID + `"},
		"endorsed": false
	}`))
	if err != nil {
		t.Fatalf("ClassifyForumEntity() error = %v", err)
	}
	if ev.Event.EventType != "Forum.Thread.PostOn" {
		t.Errorf("EventType = %q, want Forum.Thread.PostOn", ev.Event.EventType)
	}
	meta := ev.Event.EventMetadata.(models.ThreadPostMetadata)
	if meta.DepthInHierarchy != 3 {
		t.Errorf("event depth = %d, want 3", meta.DepthInHierarchy)
	}
	post := meta.PostMetadata
	if post.ItemType != "Post" || post.DepthInHierarchy != 2 {
		t.Errorf("entity = (%q, depth %d), want (Post, 2)", post.ItemType, post.DepthInHierarchy)
	}
	if post.ParentThreadID != testThreadOID {
		t.Errorf("ParentThreadID = %q, want %q", post.ParentThreadID, testThreadOID)
	}
	if post.Endorsed != false {
		t.Errorf("Endorsed = %v, want false", post.Endorsed)
	}
}

func TestClassifyForumEntity_Comment(t *testing.T) {
	ev, err := New().ClassifyForumEntity([]byte(`{` + forumEntityBase() + `,
		"_type": "Comment",
		"sk": "` + testPostOID + `-` + testCommentOID + `",
		"parent_id": {"$oid": "` + testPostOID + `"},
		"comment_thread_id": {"$oid": "` + testThreadOID + `"},
		"endorsed": true
	}`))
	if err != nil {
		t.Fatalf("ClassifyForumEntity() error = %v", err)
	}
	if ev.Event.EventType != "Forum.Post.CommentOn" {
		t.Errorf("EventType = %q, want Forum.Post.CommentOn", ev.Event.EventType)
	}
	meta := ev.Event.EventMetadata.(models.PostCommentMetadata)
	if meta.DepthInHierarchy != 4 {
		t.Errorf("event depth = %d, want 4", meta.DepthInHierarchy)
	}
	comment := meta.CommentMetadata
	if comment.ItemType != "Comment" || comment.DepthInHierarchy != 3 {
		t.Errorf("entity = (%q, depth %d), want (Comment, 3)", comment.ItemType, comment.DepthInHierarchy)
	}
	if comment.ParentPostID != testPostOID || comment.ParentThreadID != testThreadOID {
		t.Errorf("parents = (%q, %q), want (%q, %q)", comment.ParentPostID, comment.ParentThreadID, testPostOID, testThreadOID)
	}
}

func TestClassifyForumEntity_UnexpectedSortKey(t *testing.T) {
	_, err := New().ClassifyForumEntity([]byte(`{` + forumEntityBase() + `, "sk": "short"}`))
	if !errors.Is(err, ErrNotClassifiable) {
		t.Errorf("ClassifyForumEntity() error = %v, want ErrNotClassifiable", err)
	}
}

func TestClassifyForumEntity_MissingVotes(t *testing.T) {
	_, err := New().ClassifyForumEntity([]byte(`{
		"course_id": "EPFLx/CS305/2014",
		"author_id": "4217",
		"_id": {"$oid": "` + testThreadOID + `"},
		"_type": "CommentThread",
		"created_at": {"$date": 1393863545816},
		"updated_at": {"$date": 1393863545816}
	}`))
	if !errors.Is(err, ErrNotClassifiable) {
		t.Errorf("ClassifyForumEntity() error = %v, want ErrNotClassifiable", err)
	}
}
