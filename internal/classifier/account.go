// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"regexp"

	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/taxonomy"
)

// accountTagPattern lists the meaningful account tags in match priority
// order. Alternation order is significant: the first alternative that
// matches at the leftmost position wins.
var accountTagPattern = regexp.MustCompile(`edx\.course\.enrollment\.activated|students_update_enrollment|edx\.course\.enrollment\.deactivated|edx\.course\.enrollment\.mode_changed|edx\.course\.enrollment\.upgrade\.succeeded|accounts/login`)

// extractAccount classifies enrollment and login records. Account events
// carry no metadata beyond the common envelope.
func extractAccount(item map[string]any, tag string) (*models.CourseEvent, error) {
	matched := accountTagPattern.FindString(tag)
	if matched == "" {
		return nil, ErrNotClassifiable
	}

	// The student identifier may live in the context block, the event
	// body, or both. When both copies exist they must agree, and the
	// value must be an integer.
	ctxID, ctxOK := attr(item, "context.user_id")
	evtID, evtOK := attr(item, "event.user_id")
	var rawID any
	switch {
	case !ctxOK && !evtOK:
		return nil, ErrNotClassifiable
	case ctxOK && !evtOK:
		rawID = ctxID
	case !ctxOK && evtOK:
		rawID = evtID
	default:
		a, aok := asInt(ctxID)
		b, bok := asInt(evtID)
		if !aok || !bok || a != b {
			return nil, ErrNotClassifiable
		}
		rawID = ctxID
	}
	studentID, ok := asInt(rawID)
	if !ok {
		return nil, ErrNotClassifiable
	}

	courseID, ok := stringAttr(item, "context.course_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	courseID = normalizeCourseID(courseID)
	iso, ok := stringAttr(item, "time")
	if !ok {
		return nil, ErrNotClassifiable
	}
	ts, err := models.NewTimeStamp(iso)
	if err != nil {
		return nil, ErrNotClassifiable
	}
	eventType, ok := taxonomy.Lookup(taxonomy.DomainAccount, matched)
	if !ok {
		return nil, ErrNotClassifiable
	}

	id := EventID(courseID, studentID, iso, eventType)
	meta := models.AccountMetadata{EventID: id, EdxEventTag: matched}
	return buildEvent(courseID, studentID, ts, eventType, id, meta), nil
}
