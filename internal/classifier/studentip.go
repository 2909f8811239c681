// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/models"
)

// ExtractStudentIP pulls the (student, username, ip) observation out of a
// raw clickstream record. Records without all three fields carry no usable
// observation and are ErrNotClassifiable. Location resolution is a
// separate pass; the returned record has a nil Location.
func (c *Classifier) ExtractStudentIP(raw []byte) (*models.StudentIP, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, malformed(err)
	}
	studentID, ok := attr(item, "context.user_id")
	if !ok {
		return nil, ErrNotClassifiable
	}
	username, ok := stringAttr(item, "username")
	if !ok {
		return nil, ErrNotClassifiable
	}
	ip, ok := stringAttr(item, "ip")
	if !ok {
		return nil, ErrNotClassifiable
	}
	return &models.StudentIP{
		StudentID: studentID,
		Username:  username,
		IP:        ip,
	}, nil
}
