// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package models defines the canonical event schema shared across the
// normalization pipeline, the geolocation resolver, and the sink.
//
// A CourseEvent is the unit handed to downstream consumers: one normalized,
// taxonomy-conformant record per raw platform record. CourseEvents are built
// once by the classifier and never mutated afterwards.
package models

import (
	"fmt"
	"math"
	"time"
)

// TimeStamp carries the dual representation of an event time: the original
// ISO-8601 string and the numeric seconds-since-epoch with sub-second
// precision preserved.
type TimeStamp struct {
	ISO8601 string  `json:"ISO8601"`
	POSIX   float64 `json:"POSIX"`
}

// Event is the normalized event envelope common to every domain.
//
// StudentID is integer-typed for Account, Video, and Problem events; Forum
// and SignUp events carry the platform's raw identifier as-is.
// EventMetadata holds one of the domain metadata structs defined below.
type Event struct {
	StudentID     any       `json:"StudentID"`
	TimeStamp     TimeStamp `json:"TimeStamp"`
	EventType     string    `json:"EventType"`
	EventID       string    `json:"EventID"`
	EventMetadata any       `json:"EventMetadata"`
}

// CourseEvent is the top-level canonical document: an Event scoped to a
// course. CourseID is normalized (path separators replaced with "-").
type CourseEvent struct {
	CourseID string `json:"CourseID"`
	Event    Event  `json:"Event"`
}

// AccountMetadata is the metadata payload for Account.* events. Account
// events carry no fields beyond the common envelope.
type AccountMetadata struct {
	EventID     string `json:"EventID"`
	EdxEventTag string `json:"EdxEventTag"`
}

// VideoMetadata is the metadata payload for Video.* events.
//
// The optional player fields (CurrentTime, OldTime, NewTime, SeekType,
// OldSpeed, NewSpeed) are populated per sub-type and null otherwise; a
// missing optional field is recorded as absent, not treated as a failure.
type VideoMetadata struct {
	EventID          string `json:"EventID"`
	ParentVideoID    string `json:"ParentVideoID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	EdxEventTag      string `json:"EdxEventTag"`
	CurrentTime      any    `json:"CurrentTime"`
	OldTime          any    `json:"OldTime"`
	NewTime          any    `json:"NewTime"`
	SeekType         any    `json:"SeekType"`
	OldSpeed         any    `json:"OldSpeed"`
	NewSpeed         any    `json:"NewSpeed"`
}

// Answers pairs the index and text form of a student's answer to one
// problem part.
type Answers struct {
	Index any `json:"Index"`
	Text  any `json:"Text"`
}

// PartSubmission describes the student's submission for a single problem
// part within a Problem.Check event.
type PartSubmission struct {
	Answers      Answers `json:"Answers"`
	Correct      any     `json:"Correct"`
	InputType    any     `json:"InputType"`
	Question     any     `json:"Question"`
	ResponseType any     `json:"ResponseType"`
	Variant      any     `json:"Variant"`
}

// ProblemInfo is the nested static problem block attached to Problem.Check
// events. It sits at depth 0 as the root of the problem's own hierarchy.
type ProblemInfo struct {
	ProblemID        string `json:"ProblemID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	DisplayName      any    `json:"DisplayName"`
	MaxGrade         any    `json:"MaxGrade"`
}

// ProblemMetadata is the metadata payload for Problem.* events. The
// submission fields are present only for the Problem.Check sub-type.
type ProblemMetadata struct {
	EventID          string           `json:"EventID"`
	ParentProblemID  string           `json:"ParentProblemID"`
	DepthInHierarchy int              `json:"DepthInHierarchy"`
	EdxEventTag      string           `json:"EdxEventTag"`
	Submissions      []PartSubmission `json:"Submissions"`
	NumberOfAttempts any              `json:"NumberOfAttempts"`
	Grade            any              `json:"Grade"`
	Success          any              `json:"Success"`
	ProblemMetadata  *ProblemInfo     `json:"ProblemMetadata,omitempty"`
}

// ForumThreadMetadata is the metadata payload for thread-scoped Forum.*
// clickstream events: the acted-on entity is a thread at depth 1, so the
// event itself sits at depth 2.
type ForumThreadMetadata struct {
	EventID          string `json:"EventID"`
	ParentThreadID   string `json:"ParentThreadID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	EdxEventTag      string `json:"EdxEventTag"`
}

// ForumPostMetadata is the metadata payload for post-scoped Forum.*
// clickstream events (depth 3).
type ForumPostMetadata struct {
	EventID          string `json:"EventID"`
	ParentPostID     string `json:"ParentPostID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	EdxEventTag      string `json:"EdxEventTag"`
}

// ForumRootMetadata is the metadata payload for forum-root actions (loads,
// searches, uploads): depth 1, no parent entity.
type ForumRootMetadata struct {
	EventID          string `json:"EventID"`
	ParentForumID    any    `json:"ParentForumID"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	EdxEventTag      string `json:"EdxEventTag"`
}

// SignUpMetadata is the metadata payload for Course.SignUp events.
type SignUpMetadata struct {
	EventID          string `json:"EventID"`
	IsActive         any    `json:"IsActive"`
	Mode             any    `json:"Mode"`
	EdxSignUpCounter any    `json:"EdxSignUpCounter"`
}

// iso8601Layout matches the platform's timestamp format, which always
// carries a numeric UTC offset and optional fractional seconds.
const iso8601Layout = "2006-01-02T15:04:05.999999-07:00"

// isoParseLayouts lists accepted input layouts in match order.
var isoParseLayouts = []string{
	iso8601Layout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999 MST",
	"2006-01-02 15:04:05 MST",
}

// NewTimeStamp parses an ISO-8601 time string and returns the dual
// representation. The POSIX value keeps microsecond precision.
func NewTimeStamp(iso string) (TimeStamp, error) {
	var t time.Time
	var err error
	for _, layout := range isoParseLayouts {
		t, err = time.Parse(layout, iso)
		if err == nil {
			break
		}
	}
	if err != nil {
		return TimeStamp{}, fmt.Errorf("parse ISO-8601 time %q: %w", iso, err)
	}
	return TimeStamp{ISO8601: iso, POSIX: POSIXTime(t)}, nil
}

// TimeStampFromPOSIX builds the dual representation from a numeric
// seconds-since-epoch value.
func TimeStampFromPOSIX(posix float64) TimeStamp {
	return TimeStamp{ISO8601: POSIXToISO8601(posix), POSIX: posix}
}

// POSIXTime converts a time.Time to fractional seconds since the epoch,
// truncated to microsecond precision.
func POSIXTime(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// POSIXToISO8601 renders a POSIX timestamp as an ISO-8601 UTC string with
// an explicit +00:00 offset. Fractional seconds are emitted only when the
// microsecond component is non-zero.
func POSIXToISO8601(posix float64) string {
	// Round, don't truncate: the nearest float64 to a decimal fraction
	// can sit a hair below it, and truncation would lose a microsecond.
	t := time.UnixMicro(int64(math.Round(posix * 1e6))).UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05") + "+00:00"
	}
	return fmt.Sprintf("%s.%06d+00:00", t.Format("2006-01-02T15:04:05"), t.Nanosecond()/1000)
}
