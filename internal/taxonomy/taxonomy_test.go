// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package taxonomy

import "testing"

func TestLookup_ExactTags(t *testing.T) {
	tests := []struct {
		domain Domain
		key    string
		want   string
	}{
		{DomainAccount, "edx.course.enrollment.activated", "Account.Activate"},
		{DomainAccount, "accounts/login", "Account.Login"},
		{DomainVideo, "play_video", "Video.Play"},
		{DomainVideo, "transcript/translation/fr", "Video.Transcript.Translate.FR"},
		{DomainProblem, "problem_check", "Problem.Check"},
		{DomainProblem, "reset_problem", "Problem.Reset"},
		{DomainForum, "threads/[^/]*/upvote", "Forum.Thread.Upvote"},
		{DomainForum, "comments/[^/]*/delete", "Forum.Post.Delete"},
		{DomainForum, "forum/search", "Forum.Search"},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.domain, tt.key)
		if !ok {
			t.Errorf("Lookup(%s, %q): not found", tt.domain, tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%s, %q) = %q, want %q", tt.domain, tt.key, got, tt.want)
		}
	}
}

func TestLookup_UnknownKey(t *testing.T) {
	if _, ok := Lookup(DomainForum, "threads/abc123/upvote"); ok {
		t.Error("raw (unstripped) forum tag must not resolve")
	}
	if _, ok := Lookup(DomainAccount, "no_such_tag"); ok {
		t.Error("unknown tag must not resolve")
	}
	if _, ok := Lookup(Domain("Nope"), "play_video"); ok {
		t.Error("unknown domain must not resolve")
	}
}

func TestEventDepth_ForumHierarchy(t *testing.T) {
	// Event depth is always the acted-on entity's depth plus one.
	tests := []struct {
		eventType string
		want      int
	}{
		{"Forum.Load", 1},
		{"Forum.Search", 1},
		{"Forum.Thread.View", 2},
		{"Forum.Thread.Launch", 2},
		{"Forum.Thread.Upvote", 2},
		{"Forum.Thread.PostOn", 3},
		{"Forum.Post.Delete", 3},
		{"Forum.Post.Upvote", 3},
		{"Forum.Post.CommentOn", 4},
	}
	for _, tt := range tests {
		if got := EventDepth(tt.eventType); got != tt.want {
			t.Errorf("EventDepth(%q) = %d, want %d", tt.eventType, got, tt.want)
		}
	}
}

func TestEventDepth_NonForum(t *testing.T) {
	if got := EventDepth("Video.Play"); got != 1 {
		t.Errorf("EventDepth(Video.Play) = %d", got)
	}
	if got := EventDepth("Problem.Check"); got != 1 {
		t.Errorf("EventDepth(Problem.Check) = %d", got)
	}
	if got := EventDepth("Account.Login"); got != 0 {
		t.Errorf("EventDepth(Account.Login) = %d", got)
	}
	if got := EventDepth("Course.SignUp"); got != 0 {
		t.Errorf("EventDepth(Course.SignUp) = %d", got)
	}
}
