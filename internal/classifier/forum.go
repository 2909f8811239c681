// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"regexp"
	"strings"

	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/taxonomy"
)

// forumPatterns is the ordered rule set for forum clickstream tags. Each
// pattern is anchored at the end of the tag; the first pattern that
// matches wins. Patterns that the taxonomy does not know (such as replies,
// which arrive through the forum store dump instead) still match here and
// are then dropped by the taxonomy lookup.
var forumPatterns = []*regexp.Regexp{
	regexp.MustCompile(`comments/[^/]*/delete$`),
	regexp.MustCompile(`comments/[^/]*/flagAbuse$`),
	regexp.MustCompile(`comments/[^/]*/reply$`),
	regexp.MustCompile(`comments/[^/]*/unFlagAbuse$`),
	regexp.MustCompile(`comments/[^/]*/unvote$`),
	regexp.MustCompile(`comments/[^/]*/update$`),
	regexp.MustCompile(`comments/[^/]*/upvote$`),
	regexp.MustCompile(`forum$`),
	regexp.MustCompile(`forum\)$`),
	regexp.MustCompile(`forum/$`),
	regexp.MustCompile(`forum/[^/]*/inline$`),
	regexp.MustCompile(`forum/[^/]*/threads/[^/]*$`),
	regexp.MustCompile(`forum/[^/]*/threads/create$`),
	regexp.MustCompile(`forum/search$`),
	regexp.MustCompile(`forum/undefined/threads/[^/]*$`),
	regexp.MustCompile(`forum/users/[^/]*$`),
	regexp.MustCompile(`i4x-edx-templates-course-Empty/threads/create$`),
	regexp.MustCompile(`threads/[^/]*/delete$`),
	regexp.MustCompile(`threads/[^/]*/flagAbuse$`),
	regexp.MustCompile(`threads/[^/]*/follow$`),
	regexp.MustCompile(`threads/[^/]*/pin$`),
	regexp.MustCompile(`threads/[^/]*/reply$`),
	regexp.MustCompile(`threads/[^/]*/unFlagAbuse$`),
	regexp.MustCompile(`threads/[^/]*/unfollow$`),
	regexp.MustCompile(`threads/[^/]*/unvote$`),
	regexp.MustCompile(`threads/[^/]*/update$`),
	regexp.MustCompile(`threads/[^/]*/upvote$`),
	regexp.MustCompile(`upload$`),
}

// id24Pattern matches the 24-character object identifiers of forum
// threads, posts, and comments.
var id24Pattern = regexp.MustCompile(`[a-z0-9]{24}`)

// trailingNumericID matches bare numeric identifier suffixes.
var trailingNumericID = regexp.MustCompile(`[0-9]{2,10}$`)

// threadsSegment and inlineSegment collapse the course segment embedded in
// thread-view and inline tags back to the wildcard form.
var (
	threadsSegment = regexp.MustCompile(`forum/[^/]+/threads/`)
	inlineSegment  = regexp.MustCompile(`forum/[^/]+/inline`)
)

// stripObjectIDs recovers the canonical pattern key from a matched tag by
// replacing embedded object identifiers (32-hex, 24-hex, bare numeric
// suffixes) and course segments with the wildcard placeholder. The
// stripped key, not the raw tag, is what the taxonomy is keyed by.
func stripObjectIDs(matched string) string {
	stripped := id32Pattern.ReplaceAllLiteralString(matched, `[^/]*`)
	stripped = id24Pattern.ReplaceAllLiteralString(stripped, `[^/]*`)
	stripped = trailingNumericID.ReplaceAllLiteralString(stripped, `[^/]*`)
	stripped = threadsSegment.ReplaceAllLiteralString(stripped, `forum/[^/]*/threads/`)
	stripped = inlineSegment.ReplaceAllLiteralString(stripped, `forum/[^/]*/inline`)
	return stripped
}

// extractForum classifies forum clickstream records. The residual
// 24-character identifier in the matched tag determines the entity kind
// and hierarchy depth: thread-scoped events sit at depth 2, post-scoped
// at depth 3, and forum-root actions at depth 1 with no parent.
func extractForum(item map[string]any, tag string) (*models.CourseEvent, error) {
	var matched string
	for _, p := range forumPatterns {
		if m := p.FindString(tag); m != "" {
			matched = m
			break
		}
	}
	if matched == "" {
		return nil, ErrNotClassifiable
	}
	if !hasAttrs(item, "context.course_id", "context.user_id", "time") {
		return nil, ErrNotClassifiable
	}

	eventType, ok := taxonomy.Lookup(taxonomy.DomainForum, stripObjectIDs(matched))
	if !ok {
		return nil, ErrNotClassifiable
	}

	courseID, ok := stringAttr(item, "context.course_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	courseID = normalizeCourseID(courseID)
	studentID := optAttr(item, "context.user_id")
	iso, ok := stringAttr(item, "time")
	if !ok {
		return nil, ErrNotClassifiable
	}
	ts, err := models.NewTimeStamp(iso)
	if err != nil {
		return nil, ErrNotClassifiable
	}

	id := EventID(courseID, studentID, iso, eventType)

	var meta any
	switch {
	case strings.Contains(eventType, "Forum.Thread"):
		threadID := id24Pattern.FindString(matched)
		if threadID == "" {
			return nil, ErrNotClassifiable
		}
		meta = models.ForumThreadMetadata{
			EventID:          id,
			ParentThreadID:   threadID,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      matched,
		}
	case strings.Contains(eventType, "Forum.Post"):
		postID := id24Pattern.FindString(matched)
		if postID == "" {
			return nil, ErrNotClassifiable
		}
		meta = models.ForumPostMetadata{
			EventID:          id,
			ParentPostID:     postID,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      matched,
		}
	default:
		meta = models.ForumRootMetadata{
			EventID:          id,
			ParentForumID:    nil,
			DepthInHierarchy: taxonomy.EventDepth(eventType),
			EdxEventTag:      matched,
		}
	}

	return buildEvent(courseID, studentID, ts, eventType, id, meta), nil
}
