// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"regexp"
	"sort"

	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/taxonomy"
)

// problemTagPattern lists the meaningful problem tags in match priority
// order.
var problemTagPattern = regexp.MustCompile(`problem_check|problem_check_fail|problem_graded|problem_reset|problem_save|problem_show|reset_problem|reset_problem_fail|save_problem_fail|save_problem_success`)

// extractProblem classifies problem solving records. The check sub-type
// additionally requires the submission map and the module context block;
// without them the whole record is dropped, not partially emitted.
func extractProblem(item map[string]any, tag string) (*models.CourseEvent, error) {
	matched := problemTagPattern.FindString(tag)
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
	eventType, ok := taxonomy.Lookup(taxonomy.DomainProblem, matched)
	if !ok {
		return nil, ErrNotClassifiable
	}

	problemID := id32Pattern.FindString(tag)
	if problemID == "" {
		problemID = string(id32Pattern.Find(rawEventPayload(item)))
	}
	if problemID == "" {
		return nil, ErrNotClassifiable
	}

	id := EventID(courseID, studentID, iso, eventType)
	meta := models.ProblemMetadata{
		EventID:          id,
		ParentProblemID:  problemID,
		DepthInHierarchy: taxonomy.EventDepth(eventType),
		EdxEventTag:      matched,
	}

	if matched == "problem_check" {
		module, moduleOK := mapAttr(item, "context.module")
		body, bodyOK := eventBody(item)
		if !moduleOK || !bodyOK {
			return nil, ErrNotClassifiable
		}
		submission, ok := body["submission"].(map[string]any)
		if !ok {
			return nil, ErrNotClassifiable
		}

		meta.ProblemMetadata = &models.ProblemInfo{
			ProblemID:        problemID,
			DepthInHierarchy: 0,
			DisplayName:      optAttr(module, "display_name"),
			MaxGrade:         optAttr(body, "max_grade"),
		}

		answers, _ := body["answers"].(map[string]any)
		partIDs := make([]string, 0, len(submission))
		for partID := range submission {
			partIDs = append(partIDs, partID)
		}
		// Map iteration order is random; sort so output is deterministic.
		sort.Strings(partIDs)

		for _, partID := range partIDs {
			part, ok := submission[partID].(map[string]any)
			if !ok {
				continue
			}
			var index any
			if answers != nil {
				index = answers[partID]
			}
			meta.Submissions = append(meta.Submissions, models.PartSubmission{
				Answers:      models.Answers{Index: index, Text: optAttr(part, "answer")},
				Correct:      optAttr(part, "correct"),
				InputType:    optAttr(part, "input_type"),
				Question:     optAttr(part, "question"),
				ResponseType: optAttr(part, "response_type"),
				Variant:      optAttr(part, "variant"),
			})
		}

		meta.NumberOfAttempts = optAttr(body, "attempts")
		meta.Grade = optAttr(body, "grade")
		meta.Success = optAttr(body, "success")
	}

	return buildEvent(courseID, studentID, ts, eventType, id, meta), nil
}
