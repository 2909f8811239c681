// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package metrics defines the Prometheus collectors shared across the
// pipeline. Collectors register on the default registry at init; batch
// runs expose them through the push-style summary, long-lived embedders
// scrape them as usual.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record accounting per run, labeled by item class
	// (click, forum, signup, studentip, video, problem).
	RecordsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_records_parsed_total",
			Help: "Raw records read from input files",
		},
		[]string{"class"},
	)

	RecordsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_records_classified_total",
			Help: "Records normalized into canonical events",
		},
		[]string{"class"},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_records_dropped_total",
			Help: "Records that matched no classification rule",
		},
		[]string{"class"},
	)

	RecordsMalformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_records_malformed_total",
			Help: "Records whose raw bytes could not be decoded",
		},
		[]string{"class"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pyedx_run_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"class"},
	)

	// Geolocation cascade outcomes, labeled by the tier that answered
	// (exact, range_cache, table) or by nothing at all.
	GeoTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_geo_tier_hits_total",
			Help: "Location resolutions by answering tier",
		},
		[]string{"tier"},
	)

	GeoUnknown = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pyedx_geo_unknown_total",
			Help: "Addresses unresolved after exhausting every tier",
		},
	)

	// Sink accounting.
	SinkUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pyedx_sink_upserts_total",
			Help: "Documents upserted into the sink",
		},
	)

	SinkRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pyedx_sink_rejects_total",
			Help: "Documents the sink rejected individually",
		},
	)

	// Content enrichment.
	DurationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyedx_duration_lookups_total",
			Help: "Video duration lookups by outcome (hit, miss, cached)",
		},
		[]string{"outcome"},
	)
)
