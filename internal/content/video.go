// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package content scrapes static course material: video and problem
// module definitions from course XML exports, plus the remote duration
// lookup that enriches video records.
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/epfl-cede/pyedx/internal/logging"
	"github.com/epfl-cede/pyedx/internal/models"
)

// Export file paths encode the snapshot date, course, and content id:
// *YYYY-MM-DD*/COURSEID/video/VIDEOID.xml (or problem/).
var (
	videoPathPattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[^/]*/([^/]*)/video/([a-zA-Z0-9]*)\.xml$`)
	problemPathPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[^/]*/([^/]*)/problem/([a-zA-Z0-9]*)\.xml$`)
)

// ErrBadContentPath means the export file path does not encode the
// date/course/id triple needed to label its records.
var ErrBadContentPath = errors.New("content file path does not match *YYYY-MM-DD*/COURSEID/<kind>/ID.xml")

// DurationFunc resolves a YouTube video id to a "H:MM:SS" duration
// string. ErrVideoNotFound marks an id the remote side no longer knows;
// the caller records a null length and moves on.
type DurationFunc func(ctx context.Context, youtubeID string) (string, error)

// ParseVideoFile scrapes every <video> module in one export file.
// Modules without a YouTube id carry no usable playback reference and
// are skipped. The duration lookup is optional; without it every record
// gets a null length.
func ParseVideoFile(ctx context.Context, path string, duration DurationFunc) ([]models.VideoContent, error) {
	m := videoPathPattern.FindStringSubmatch(path)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadContentPath, path)
	}
	lastLogged, courseID, videoID := m[1], m[2], m[3]

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := parseFragment(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var out []models.VideoContent
	for _, node := range root.findAll("video") {
		youtubeID, ok := node.stringAttr("youtube_id_1_0")
		if !ok || youtubeID == "" {
			continue
		}

		var length any
		if duration != nil {
			s, err := duration(ctx, youtubeID)
			switch {
			case errors.Is(err, ErrVideoNotFound):
				logging.Warn().Str("youtube_id", youtubeID).Msg("Video not found on remote server; null length recorded")
			case err != nil:
				return nil, fmt.Errorf("duration lookup for %s: %w", youtubeID, err)
			default:
				length = s
			}
		}

		out = append(out, models.VideoContent{
			CourseID:         courseID,
			VideoID:          videoID,
			LastLoggedDate:   lastLogged,
			DepthInHierarchy: 0,
			Title:            node.attr("display_name"),
			Length:           length,
			Downloadable:     node.attr("download_video"),
			HTML5Sources:     node.attr("html5_sources"),
			SourceURL:        node.attr("source"),
			Subtitles:        node.attr("sub"),
			YoutubeID:        youtubeID,
			YoutubeTAG:       node.attr("youtube"),
			URLName:          node.attr("url_name"),
		})
	}
	return out, nil
}
