// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package content

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/epfl-cede/pyedx/internal/models"
)

// The response module kinds recognized inside a <problem> element.
var problemPartTypes = []string{
	"choiceresponse",
	"multiplechoiceresponse",
	"solution",
	"script",
	"customresponse",
	"numericalresponse",
	"coderesponse",
	"drag_and_drop_input",
	"formularesponse",
	"imageresponse",
	"optioninput",
	"optionresponse",
	"stringresponse",
	"symbolicresponse",
}

// ParseProblemFile scrapes every <problem> module in one export file.
// Problem exports predate the platform's UTF-8 migration and are stored
// as Latin-1, so the bytes are transcoded before parsing.
func ParseProblemFile(path string) ([]models.ProblemContent, error) {
	m := problemPathPattern.FindStringSubmatch(path)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadContentPath, path)
	}
	lastLogged, courseID, problemID := m[1], m[2], m[3]

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := parseFragment(latin1ToUTF8(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var out []models.ProblemContent
	for _, node := range root.findAll("problem") {
		var parts []models.ProblemPart
		for _, partType := range problemPartTypes {
			for _, partNode := range node.findAll(partType) {
				parts = append(parts, models.ProblemPart{
					ProblemPartID:   nil,
					ParentProblemID: problemID,
					PartType:        partType,
					PartTree:        map[string]any{partType: partNode.toDocument()},
				})
			}
		}
		out = append(out, models.ProblemContent{
			CourseID:       courseID,
			ProblemID:      problemID,
			LastLoggedDate: lastLogged,
			ProblemParts:   parts,
			FullContent:    node.fullText(),
			MaxAttempts:    node.attr("max_attempts"),
			DisplayName:    node.attr("display_name"),
		})
	}
	return out, nil
}

// latin1ToUTF8 transcodes ISO 8859-1 bytes. Each byte maps directly to
// the Unicode code point of the same value.
func latin1ToUTF8(raw []byte) string {
	buf := make([]byte, 0, len(raw))
	for _, b := range raw {
		buf = utf8.AppendRune(buf, rune(b))
	}
	return string(buf)
}
