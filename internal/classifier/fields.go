// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package classifier

import (
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// attr walks a dotted path ("context.course_id") through nested maps.
// Every extraction either yields a value or reports the field absent;
// nothing here panics on missing or mistyped structure.
func attr(item map[string]any, path string) (any, bool) {
	var cur any = item
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// hasAttrs reports whether every listed path resolves to a value.
func hasAttrs(item map[string]any, paths ...string) bool {
	for _, p := range paths {
		if _, ok := attr(item, p); !ok {
			return false
		}
	}
	return true
}

// stringAttr resolves a path to a string field.
func stringAttr(item map[string]any, path string) (string, bool) {
	v, ok := attr(item, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// mapAttr resolves a path to a nested object.
func mapAttr(item map[string]any, path string) (map[string]any, bool) {
	v, ok := attr(item, path)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// optAttr resolves a path to its value, or nil when absent. Used for
// optional metadata fields that are recorded as null rather than dropped.
func optAttr(item map[string]any, path string) any {
	v, ok := attr(item, path)
	if !ok {
		return nil
	}
	return v
}

// asInt converts a decoded JSON value to an integer. JSON numbers decode
// as float64; only integral values qualify. Strings and other types fail
// the integer constraint.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// eventBody returns the record's "event" attribute as an object. The
// platform serializes client-side events as an embedded JSON string, so a
// string value is re-parsed; server-side events carry the object directly.
func eventBody(item map[string]any) (map[string]any, bool) {
	v, ok := item["event"]
	if !ok {
		return nil, false
	}
	switch body := v.(type) {
	case map[string]any:
		return body, true
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

// rawEventPayload returns the record's "event" attribute serialized back to
// JSON, for identifier scans over the whole payload.
func rawEventPayload(item map[string]any) []byte {
	v, ok := item["event"]
	if !ok {
		return nil
	}
	if s, ok := v.(string); ok {
		return []byte(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
