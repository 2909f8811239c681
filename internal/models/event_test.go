// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package models

import (
	"math"
	"testing"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNewTimeStamp_OffsetForm(t *testing.T) {
	ts, err := NewTimeStamp("2014-03-03T16:19:05.81686+00:00")
	if err != nil {
		t.Fatalf("NewTimeStamp: %v", err)
	}
	if ts.ISO8601 != "2014-03-03T16:19:05.81686+00:00" {
		t.Errorf("ISO8601 changed: %s", ts.ISO8601)
	}
	if !closeTo(ts.POSIX, 1393863545.81686) {
		t.Errorf("POSIX = %v", ts.POSIX)
	}
}

func TestNewTimeStamp_SpaceUTCForm(t *testing.T) {
	ts, err := NewTimeStamp("2014-01-15 09:30:00 UTC")
	if err != nil {
		t.Fatalf("NewTimeStamp: %v", err)
	}
	if ts.POSIX != 1389778200 {
		t.Errorf("POSIX = %v", ts.POSIX)
	}
}

func TestNewTimeStamp_Invalid(t *testing.T) {
	if _, err := NewTimeStamp("not a time"); err == nil {
		t.Fatal("expected error for unparseable time")
	}
}

func TestTimeStampFromPOSIX_WholeSeconds(t *testing.T) {
	ts := TimeStampFromPOSIX(1389778200)
	if ts.ISO8601 != "2014-01-15T09:30:00+00:00" {
		t.Errorf("ISO8601 = %s", ts.ISO8601)
	}
	if ts.POSIX != 1389778200 {
		t.Errorf("POSIX = %v", ts.POSIX)
	}
}

func TestTimeStampFromPOSIX_Fractional(t *testing.T) {
	ts := TimeStampFromPOSIX(1393863545.816860)
	if ts.ISO8601 != "2014-03-03T16:19:05.816860+00:00" {
		t.Errorf("ISO8601 = %s", ts.ISO8601)
	}
}

func TestPOSIXToISO8601_NoFractionOnWholeSeconds(t *testing.T) {
	// Whole seconds must not grow a ".000000" suffix.
	got := POSIXToISO8601(0)
	if got != "1970-01-01T00:00:00+00:00" {
		t.Errorf("POSIXToISO8601(0) = %s", got)
	}
}

func TestTimeStampRoundTrip(t *testing.T) {
	for _, posix := range []float64{1389778200, 1393863545.816860, 1400000000.5} {
		ts := TimeStampFromPOSIX(posix)
		back, err := NewTimeStamp(ts.ISO8601)
		if err != nil {
			t.Fatalf("reparse %s: %v", ts.ISO8601, err)
		}
		if !closeTo(back.POSIX, posix) {
			t.Errorf("round trip %v -> %s -> %v", posix, ts.ISO8601, back.POSIX)
		}
	}
}
