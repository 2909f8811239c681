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

// videoTagPattern lists the meaningful video tags in match priority order.
// The language-specific transcript translations precede the generic one.
var videoTagPattern = regexp.MustCompile(`load_video|play_video|pause_video|seek_video|stop_video|speed_change_video|show_transcript|hide_transcript|transcript/download|transcript/translation/en|transcript/translation/fr|transcript/translation`)

// id32Pattern matches the 32-character module identifiers the platform
// embeds in tags and payloads.
var id32Pattern = regexp.MustCompile(`[a-z0-9]{32}`)

// extractVideo classifies video interaction records. The video identifier
// is taken from the tag when present, falling back to a scan of the event
// payload; a record without one is not classifiable. Optional player
// fields are recorded as absent when missing, never as a failure.
func extractVideo(item map[string]any, tag string) (*models.CourseEvent, error) {
	matched := videoTagPattern.FindString(tag)
	if matched == "" {
		return nil, ErrNotClassifiable
	}
	if !hasAttrs(item, "context.course_id", "context.user_id", "time") {
		return nil, ErrNotClassifiable
	}

	courseID, ok := stringAttr(item, "context.course_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	courseID = normalizeCourseID(courseID)
	studentID, ok := asInt(optAttr(item, "context.user_id"))
	if !ok {
		return nil, ErrNotClassifiable
	}
	iso, ok := stringAttr(item, "time")
	if !ok {
		return nil, ErrNotClassifiable
	}
	ts, err := models.NewTimeStamp(iso)
	if err != nil {
		return nil, ErrNotClassifiable
	}
	eventType, ok := taxonomy.Lookup(taxonomy.DomainVideo, matched)
	if !ok {
		return nil, ErrNotClassifiable
	}

	videoID := id32Pattern.FindString(tag)
	if videoID == "" {
		videoID = string(id32Pattern.Find(rawEventPayload(item)))
	}
	if videoID == "" {
		return nil, ErrNotClassifiable
	}

	id := EventID(courseID, studentID, iso, eventType)
	meta := models.VideoMetadata{
		EventID:          id,
		ParentVideoID:    videoID,
		DepthInHierarchy: taxonomy.EventDepth(eventType),
		EdxEventTag:      matched,
	}

	switch matched {
	case "play_video", "pause_video", "stop_video", "show_transcript", "hide_transcript":
		if body, ok := eventBody(item); ok {
			meta.CurrentTime = optAttr(body, "currentTime")
		}
	case "seek_video":
		if body, ok := eventBody(item); ok {
			meta.OldTime = optAttr(body, "old_time")
			meta.NewTime = optAttr(body, "new_time")
			meta.SeekType = optAttr(body, "type")
		}
	case "speed_change_video":
		if body, ok := eventBody(item); ok {
			meta.OldSpeed = optAttr(body, "old_speed")
			meta.NewSpeed = optAttr(body, "new_speed")
		}
	}

	return buildEvent(courseID, studentID, ts, eventType, id, meta), nil
}
