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

// ClassifySignUp normalizes one course enrollment row. SignUp records are
// already narrowly scoped, so there is no pattern matching: direct field
// extraction of the activation flag, enrollment mode, and the platform's
// sequence counter.
func (c *Classifier) ClassifySignUp(raw []byte) (*models.CourseEvent, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, malformed(err)
	}

	courseID, ok := stringAttr(item, "course_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	courseID = normalizeCourseID(courseID)
	studentID, ok := attr(item, "user_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	created, ok := stringAttr(item, "created")
	if !ok {
		return nil, ErrNotClassifiable
	}

	// The row carries a bare "YYYY-MM-DD hh:mm:ss" stamp; it is UTC.
	ts, err := models.NewTimeStamp(created + " UTC")
	if err != nil {
		return nil, ErrNotClassifiable
	}
	// Re-derive the ISO form from the POSIX value so the stored string is
	// in the canonical +00:00 format.
	ts = models.TimeStampFromPOSIX(ts.POSIX)

	eventType := taxonomy.EventTypeSignUp
	id := EventID(courseID, studentID, ts.ISO8601, eventType)
	meta := models.SignUpMetadata{
		EventID:          id,
		IsActive:         optAttr(item, "is_active"),
		Mode:             optAttr(item, "mode"),
		EdxSignUpCounter: optAttr(item, "id"),
	}

	return buildEvent(courseID, studentID, ts, eventType, id, meta), nil
}
