// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package taxonomy holds the closed registry that maps raw platform event
// tags to canonical dotted event types, partitioned by domain.
//
// The registry is process-wide immutable configuration: it is defined once
// at package level and only read afterwards. Account, Video, and Problem
// tables are keyed by the exact raw tag; the Forum table is keyed by the
// tag's canonical pattern form, obtained after the classifier strips
// embedded object identifiers back to the "[^/]*" wildcard.
package taxonomy

import "strings"

// Domain names one of the five top-level event partitions.
type Domain string

const (
	DomainAccount Domain = "Account"
	DomainVideo   Domain = "Video"
	DomainProblem Domain = "Problem"
	DomainForum   Domain = "Forum"
	DomainSignUp  Domain = "SignUp"
)

// EventTypeSignUp is the single canonical type of the SignUp domain, which
// needs no tag table: enrollment rows are already narrowly scoped.
const EventTypeSignUp = "Course.SignUp"

var accountTypes = map[string]string{
	"edx.course.enrollment.activated":         "Account.Activate",
	"edx.course.enrollment.deactivated":       "Account.Deactivate",
	"students_update_enrollment":              "Account.InfoUpdate",
	"edx.course.enrollment.mode_changed":      "Account.Upgrade",
	"edx.course.enrollment.upgrade.succeeded": "Account.Upgrade.Receipt",
	"accounts/login":                          "Account.Login",
}

var videoTypes = map[string]string{
	"load_video":                "Video.Load",
	"play_video":                "Video.Play",
	"pause_video":               "Video.Pause",
	"seek_video":                "Video.Seek",
	"stop_video":                "Video.Stop",
	"speed_change_video":        "Video.SpeedChange",
	"show_transcript":           "Video.Transcript.Show",
	"hide_transcript":           "Video.Transcript.Hide",
	"transcript/download":       "Video.Transcript.Download",
	"transcript/translation/en": "Video.Transcript.Translate.EN",
	"transcript/translation/fr": "Video.Transcript.Translate.FR",
	"transcript/translation":    "Video.Transcript.Translate",
}

var problemTypes = map[string]string{
	"problem_show":         "Problem.Show",
	"problem_check":        "Problem.Check",
	"problem_check_fail":   "Problem.Check.Fail",
	"problem_graded":       "Problem.Graded",
	"problem_save":         "Problem.Save",
	"save_problem_fail":    "Problem.Save.Fail",
	"save_problem_success": "Problem.Save.Success",
	"reset_problem":        "Problem.Reset",
	"problem_reset":        "Problem.Reset",
	"reset_problem_fail":   "Problem.Reset.Fail",
}

// forumTypes is keyed by the identifier-stripped pattern form of the tag,
// not the raw tag itself.
var forumTypes = map[string]string{
	"comments/[^/]*/delete":                                "Forum.Post.Delete",
	"comments/[^/]*/flagAbuse":                             "Forum.Post.Report",
	"comments/[^/]*/unFlagAbuse":                           "Forum.Post.Unreport",
	"comments/[^/]*/unvote":                                "Forum.Post.Unvote",
	"comments/[^/]*/update":                                "Forum.Post.Update",
	"comments/[^/]*/upvote":                                "Forum.Post.Upvote",
	"forum":                                                "Forum.Load",
	"forum)":                                               "Forum.Load",
	"forum/":                                               "Forum.Load",
	"forum/[^/]*/inline":                                   "Forum.Unknown",
	"forum/[^/]*/threads/[^/]*":                            "Forum.Thread.View",
	"forum/i4x-edx-templates-course-Empty/inline":          "Forum.Unknown",
	"forum/i4x-edx-templates-course-Empty/threads/[^/]*":   "Forum.Unknown",
	"forum/i4x-EPFLx-[^-]*-course-[^/]*/threads/[^/]*":     "Forum.Thread.View",
	"forum/search":                                         "Forum.Search",
	"forum/undefined/threads/[^/]*":                        "Forum.Thread.View",
	"forum/users/[^/]*":                                    "Forum.User.View",
	"i4x-edx-templates-course-Empty/threads/create":        "Forum.Thread.Launch",
	"threads/[^/]*/delete":                                 "Forum.Thread.Delete",
	"threads/[^/]*/flagAbuse":                              "Forum.Thread.Unreport",
	"threads/[^/]*/follow":                                 "Forum.Thread.Follow",
	"threads/[^/]*/pin":                                    "Forum.Thread.Pin",
	"threads/[^/]*/unFlagAbuse":                            "Forum.Thread.Report",
	"threads/[^/]*/unfollow":                               "Forum.Thread.Unfollow",
	"threads/[^/]*/unvote":                                 "Forum.Thread.Unvote",
	"threads/[^/]*/update":                                 "Forum.Thread.Update",
	"threads/[^/]*/upvote":                                 "Forum.Thread.Upvote",
	"upload":                                               "Forum.Upload",
}

var domainTables = map[Domain]map[string]string{
	DomainAccount: accountTypes,
	DomainVideo:   videoTypes,
	DomainProblem: problemTypes,
	DomainForum:   forumTypes,
}

// Lookup resolves a raw tag (or, for Forum, a stripped pattern key) to its
// canonical event type. The second return is false when the key is not in
// the domain's table.
func Lookup(domain Domain, key string) (string, bool) {
	table, ok := domainTables[domain]
	if !ok {
		return "", false
	}
	eventType, ok := table[key]
	return eventType, ok
}

// Forum entity hierarchy: Forum(0) -> Thread(1) -> Post(2) -> Comment(3).
// An event acting on an entity sits one level below it, so EventDepth is
// the entity depth plus one.
const (
	EntityDepthForum   = 0
	EntityDepthThread  = 1
	EntityDepthPost    = 2
	EntityDepthComment = 3
)

// EventDepth returns the hierarchy depth a classified forum event must
// carry, derived from its event type's position in the entity tree.
// Non-forum domains have a flat content hierarchy: their events sit at
// depth 1 under the video or problem entity (depth 0). Account and SignUp
// events have no hierarchy and report depth 0.
func EventDepth(eventType string) int {
	switch {
	case strings.HasPrefix(eventType, "Forum.Post.CommentOn"):
		// A CommentOn event acts on a comment entity.
		return EntityDepthComment + 1
	case strings.HasPrefix(eventType, "Forum.Thread.PostOn"):
		// A PostOn event acts on a post entity.
		return EntityDepthPost + 1
	case strings.HasPrefix(eventType, "Forum.Post"):
		return EntityDepthPost + 1
	case strings.HasPrefix(eventType, "Forum.Thread"):
		return EntityDepthThread + 1
	case strings.HasPrefix(eventType, "Forum"):
		return EntityDepthForum + 1
	case strings.HasPrefix(eventType, "Video"), strings.HasPrefix(eventType, "Problem"):
		return 1
	default:
		return 0
	}
}
