// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package classifier turns raw platform records into canonical events.
//
// Classification is a pure function over the record bytes: no shared
// mutable state, no I/O. Dispatch is a two-stage rule table. The first
// stage picks the domain by inspecting the raw event tag for
// domain-indicating substrings; the second stage matches the tag against
// the domain's ordered pattern set, first match wins. A record that no
// rule claims, or that lacks required context, is ErrNotClassifiable -
// the normal fate of most raw traffic.
package classifier

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/models"
)

// extractFunc builds a canonical event for a domain from the decoded
// record and its raw event tag.
type extractFunc func(item map[string]any, tag string) (*models.CourseEvent, error)

// clickRule pairs a domain predicate with its extractor. Order matters:
// the first rule whose predicate accepts the tag handles the record.
type clickRule struct {
	domain  string
	match   func(tag string) bool
	extract extractFunc
}

// Classifier normalizes raw clickstream records. It is stateless and safe
// for concurrent use.
type Classifier struct {
	rules []clickRule
}

// New returns a Classifier with the standard domain rule table.
func New() *Classifier {
	return &Classifier{
		rules: []clickRule{
			{
				domain: "Account",
				match: func(tag string) bool {
					return strings.Contains(tag, "enrollment") || strings.Contains(tag, "login")
				},
				extract: extractAccount,
			},
			{
				domain: "Video",
				match: func(tag string) bool {
					return strings.Contains(tag, "video") || strings.Contains(tag, "transcript")
				},
				extract: extractVideo,
			},
			{
				domain: "Problem",
				match: func(tag string) bool {
					return strings.Contains(tag, "problem")
				},
				extract: extractProblem,
			},
			{
				domain: "Forum",
				match: func(tag string) bool {
					return strings.Contains(tag, "discussion") || strings.Contains(tag, "forum")
				},
				extract: extractForum,
			},
		},
	}
}

// Classify normalizes one raw clickstream record.
//
// It returns ErrMalformedRecord when the bytes are not valid JSON, and
// ErrNotClassifiable when the record matches no rule or lacks a required
// field. Both are per-record outcomes; neither stops a batch.
func (c *Classifier) Classify(raw []byte) (*models.CourseEvent, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, malformed(err)
	}
	return c.ClassifyRecord(item)
}

// ClassifyRecord normalizes an already-decoded record.
func (c *Classifier) ClassifyRecord(item map[string]any) (*models.CourseEvent, error) {
	tag, ok := stringAttr(item, "event_type")
	if !ok {
		return nil, ErrNotClassifiable
	}
	for _, rule := range c.rules {
		if rule.match(tag) {
			return rule.extract(item, tag)
		}
	}
	return nil, ErrNotClassifiable
}

// normalizeCourseID replaces the course path separators with a single
// delimiter, e.g. "EPFLx/CS305/2014" -> "EPFLx-CS305-2014".
func normalizeCourseID(courseID string) string {
	return strings.ReplaceAll(courseID, "/", "-")
}

// buildEvent assembles the common envelope shared by every domain. The id
// must be the EventID already derived from the same (courseID, studentID,
// iso, eventType) tuple that the metadata was built with.
func buildEvent(courseID string, studentID any, ts models.TimeStamp, eventType, id string, metadata any) *models.CourseEvent {
	return &models.CourseEvent{
		CourseID: courseID,
		Event: models.Event{
			StudentID:     studentID,
			TimeStamp:     ts,
			EventType:     eventType,
			EventID:       id,
			EventMetadata: metadata,
		},
	}
}
