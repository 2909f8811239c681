// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"crypto/sha256"
	"fmt"
)

// EventID derives the deterministic identity of a canonical event from the
// tuple that defines it. Re-processing the same raw record, in the same run
// or any later one, yields the same ID, which is what makes sink upserts
// idempotent. Unrelated payload bytes do not participate.
func EventID(courseID string, studentID any, isoTime, eventType string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%v%v%v%v", courseID, studentID, isoTime, eventType)
	return fmt.Sprintf("%x", h.Sum(nil))
}
