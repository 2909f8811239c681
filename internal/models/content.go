// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package models

// VideoContent is the static metadata scraped for one video module of a
// course export. Length is a "H:MM:SS" duration string, or null when the
// remote lookup could not determine it.
type VideoContent struct {
	CourseID         string `json:"CourseID"`
	VideoID          string `json:"VideoID"`
	LastLoggedDate   string `json:"LastLoggedDate"`
	DepthInHierarchy int    `json:"DepthInHierarchy"`
	Title            any    `json:"Title"`
	Length           any    `json:"Length"`
	Downloadable     any    `json:"Downloadable"`
	HTML5Sources     any    `json:"HTML5Sources"`
	SourceURL        any    `json:"SourceURL"`
	Subtitles        any    `json:"Subtitles"`
	YoutubeID        string `json:"YoutubeID"`
	YoutubeTAG       any    `json:"YoutubeTAG"`
	URLName          any    `json:"URLName"`
}

// ProblemPart is one recognized response module inside a problem, with its
// markup subtree converted to a nested document.
type ProblemPart struct {
	ProblemPartID   any            `json:"ProblemPartID"`
	ParentProblemID string         `json:"ParentProblemID"`
	PartType        string         `json:"PartType"`
	PartTree        map[string]any `json:"PartTree"`
}

// ProblemContent is the static metadata scraped for one problem module of
// a course export.
type ProblemContent struct {
	CourseID       string        `json:"CourseID"`
	ProblemID      string        `json:"ProblemID"`
	LastLoggedDate string        `json:"LastLoggedDate"`
	ProblemParts   []ProblemPart `json:"ProblemParts"`
	FullContent    string        `json:"FullContent"`
	MaxAttempts    any           `json:"MaxAttempts"`
	DisplayName    any           `json:"DisplayName"`
}
