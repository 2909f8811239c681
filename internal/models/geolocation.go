// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package models

// IPRange is the half of the authoritative table row that bounds a
// location: two dotted-quad addresses with Start <= End in numeric order.
type IPRange struct {
	Start string `json:"Start"`
	End   string `json:"End"`
}

// Country pairs the ISO 3166 alpha-2 code with the resolved display name.
type Country struct {
	Code string `json:"Code"`
	Name string `json:"Name"`
}

// Coordinates carries latitude and longitude exactly as recorded in the
// authoritative table.
type Coordinates struct {
	Latitude  string `json:"Latitude"`
	Longitude string `json:"Longitude"`
}

// TimeZone carries the UTC offset and zone name of a location.
type TimeZone struct {
	Offset string `json:"Offset"`
	Name   string `json:"Name"`
}

// GeoLocation is the resolved location for an IP address. Every
// GeoLocation is derived from a row of the authoritative range table;
// cache entries never introduce locations of their own.
type GeoLocation struct {
	LocalIPRange IPRange     `json:"LocalIPRange"`
	Country      Country     `json:"Country"`
	District     string      `json:"District"`
	City         string      `json:"City"`
	Coordinates  Coordinates `json:"Coordinates"`
	TimeZone     TimeZone    `json:"TimeZone"`
}

// StudentIP is one de-duplicated client IP observation, optionally
// enriched with a resolved location. A nil Location means the resolver
// exhausted every tier without a match, which is a valid terminal state.
type StudentIP struct {
	StudentID any          `json:"StudentID"`
	Username  string       `json:"-"`
	IP        string       `json:"IP"`
	Location  *GeoLocation `json:"Location"`
}
