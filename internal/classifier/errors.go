// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"errors"
	"fmt"
)

// ErrNotClassifiable marks a record that matched no known pattern or lacked
// required context. This is the expected outcome for most raw traffic, not
// an error condition: callers count the drop and continue.
var ErrNotClassifiable = errors.New("record not classifiable")

// ErrMalformedRecord marks a record whose raw bytes could not be decoded at
// all. The record is skipped and reported; the batch never aborts.
var ErrMalformedRecord = errors.New("malformed record")

// malformed wraps a decode error so callers can match ErrMalformedRecord
// while keeping the underlying cause in the message.
func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
}
