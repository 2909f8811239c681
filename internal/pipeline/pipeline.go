// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package pipeline drives end-to-end runs: read raw records from a log
// or export file, classify each one, optionally enrich and persist, and
// write the clean JSON-lines output.
//
// A run never aborts on a bad record. Unclassifiable and malformed
// records are counted and dropped; only structural failures (unreadable
// input, occupied output, missing geolocation table) fail the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/epfl-cede/pyedx/internal/classifier"
	"github.com/epfl-cede/pyedx/internal/geoip"
	"github.com/epfl-cede/pyedx/internal/logging"
	"github.com/epfl-cede/pyedx/internal/metrics"
	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/sink"
)

// ItemClass selects which kind of records a run extracts.
type ItemClass string

const (
	ClassClick     ItemClass = "Click"
	ClassForum     ItemClass = "Forum"
	ClassSignUp    ItemClass = "SignUp"
	ClassStudentIP ItemClass = "StudentIP"
)

// ParseItemClass validates a class name from the command line.
func ParseItemClass(s string) (ItemClass, error) {
	switch ItemClass(s) {
	case ClassClick, ClassForum, ClassSignUp, ClassStudentIP:
		return ItemClass(s), nil
	}
	return "", fmt.Errorf("unknown item class: %q", s)
}

// Stats summarizes one run.
type Stats struct {
	RunID      uuid.UUID
	Class      ItemClass
	Parsed     int
	Classified int
	Dropped    int
	Malformed  int
	GeoUnknown int
	Elapsed    time.Duration
}

// Options configures a Pipeline.
type Options struct {
	// Resolver enables location enrichment for StudentIP runs. Nil
	// disables it.
	Resolver *geoip.Resolver
	// Sink, when non-nil, receives every classified document as an
	// idempotent upsert.
	Sink sink.Sink
	// Workers bounds concurrent classification. Zero or one means
	// sequential; classification is pure, so output order is the input
	// order either way.
	Workers int
}

// Pipeline runs extraction for one or more input files. Safe for
// sequential reuse; a single run may classify concurrently internally.
type Pipeline struct {
	classifier *classifier.Classifier
	opts       Options
}

func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > runtime.NumCPU() {
		opts.Workers = runtime.NumCPU()
	}
	return &Pipeline{classifier: classifier.New(), opts: opts}
}

// RunAndSave processes one input file and writes the clean output.
// With replace false an occupied output path fails before any parsing,
// mirroring the save-only-if-absent contract; with replace true the
// output is rewritten.
func (p *Pipeline) RunAndSave(ctx context.Context, class ItemClass, inPath, outPath string, locate, replace bool) (Stats, error) {
	if !replace && outputExists(outPath) {
		return Stats{}, fmt.Errorf("%w: %s", ErrOutputExists, outPath)
	}
	docs, stats, err := p.Run(ctx, class, inPath, locate)
	if err != nil {
		return stats, err
	}
	if len(docs) == 0 {
		logging.Warn().Str("class", string(class)).Str("in", inPath).Msg("Run produced no documents; writing empty output")
	}
	if err := SaveDocuments(outPath, docs, replace); err != nil {
		return stats, err
	}
	logging.Info().
		Str("run_id", stats.RunID.String()).
		Str("class", string(class)).
		Str("out", outPath).
		Int("classified", stats.Classified).
		Dur("elapsed", stats.Elapsed).
		Msg("Output saved")
	return stats, nil
}

// Run processes one input file and returns the clean documents in input
// order, without writing anything.
func (p *Pipeline) Run(ctx context.Context, class ItemClass, inPath string, locate bool) ([]any, Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.New(), Class: class}

	logging.Info().
		Str("run_id", stats.RunID.String()).
		Str("class", string(class)).
		Str("in", inPath).
		Msg("Parsing input file")

	records, err := readRecords(inPath)
	if err != nil {
		return nil, stats, err
	}
	stats.Parsed = len(records)
	metrics.RecordsParsed.WithLabelValues(string(class)).Add(float64(len(records)))

	var docs []any
	if class == ClassStudentIP {
		docs, err = p.runStudentIP(ctx, records, locate, &stats)
	} else {
		docs, err = p.runEvents(ctx, class, records, &stats)
	}
	if err != nil {
		return nil, stats, err
	}

	if p.opts.Sink != nil {
		p.upsertAll(ctx, class, docs)
	}

	stats.Elapsed = time.Since(start)
	metrics.RecordsClassified.WithLabelValues(string(class)).Add(float64(stats.Classified))
	metrics.RecordsDropped.WithLabelValues(string(class)).Add(float64(stats.Dropped))
	metrics.RecordsMalformed.WithLabelValues(string(class)).Add(float64(stats.Malformed))
	metrics.RunDuration.WithLabelValues(string(class)).Observe(stats.Elapsed.Seconds())

	logging.Info().
		Str("run_id", stats.RunID.String()).
		Str("class", string(class)).
		Int("parsed", stats.Parsed).
		Int("classified", stats.Classified).
		Int("dropped", stats.Dropped).
		Int("malformed", stats.Malformed).
		Dur("elapsed", stats.Elapsed).
		Msg("Done parsing file")
	return docs, stats, nil
}

// classifyFor returns the per-record extraction for an event class.
func (p *Pipeline) classifyFor(class ItemClass) func(raw []byte) (*models.CourseEvent, error) {
	switch class {
	case ClassForum:
		return p.classifier.ClassifyForumEntity
	case ClassSignUp:
		return p.classifier.ClassifySignUp
	default:
		return p.classifier.Classify
	}
}

// runEvents classifies every record, in parallel when configured.
// Results keep input order: each worker writes to its record's slot.
func (p *Pipeline) runEvents(ctx context.Context, class ItemClass, records [][]byte, stats *Stats) ([]any, error) {
	extract := p.classifyFor(class)
	results := make([]*models.CourseEvent, len(records))
	errs := make([]error, len(records))

	if p.opts.Workers <= 1 {
		for i, raw := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i], errs[i] = extract(raw)
		}
	} else {
		indexes := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < p.opts.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexes {
					results[i], errs[i] = extract(records[i])
				}
			}()
		}
		for i := range records {
			if err := ctx.Err(); err != nil {
				close(indexes)
				wg.Wait()
				return nil, err
			}
			indexes <- i
		}
		close(indexes)
		wg.Wait()
	}

	var docs []any
	for i, ev := range results {
		switch {
		case ev != nil:
			stats.Classified++
			docs = append(docs, ev)
		case errors.Is(errs[i], classifier.ErrMalformedRecord):
			stats.Malformed++
			logging.Debug().Err(errs[i]).Str("class", string(class)).Msg("Skipping malformed record")
		default:
			stats.Dropped++
		}
	}
	return docs, nil
}

// upsertAll pushes classified documents to the sink. A rejected document
// is logged and skipped; the batch continues.
func (p *Pipeline) upsertAll(ctx context.Context, class ItemClass, docs []any) {
	for _, doc := range docs {
		key, ok := sinkKey(class, doc)
		if !ok {
			metrics.SinkRejects.Inc()
			logging.Warn().Str("class", string(class)).Msg("Document has no sink key; skipping upsert")
			continue
		}
		if err := p.opts.Sink.Upsert(ctx, key, doc); err != nil {
			metrics.SinkRejects.Inc()
			logging.Warn().Err(err).Str("key", key).Msg("Sink rejected document")
			continue
		}
		metrics.SinkUpserts.Inc()
	}
}

// sinkKey picks the idempotency key for a document. Click and sign-up
// events key on their EventID. Forum store items key on the underlying
// entity so re-imports of the same dump collapse. Student IP documents
// key on the student.
func sinkKey(class ItemClass, doc any) (string, bool) {
	switch d := doc.(type) {
	case *models.StudentIP:
		return fmt.Sprintf("%v", d.StudentID), true
	case *models.CourseEvent:
		if class != ClassForum {
			return d.Event.EventID, true
		}
		switch meta := d.Event.EventMetadata.(type) {
		case models.ThreadLaunchMetadata:
			return meta.ThreadMetadata.ThreadID, true
		case models.ThreadPostMetadata:
			return meta.PostMetadata.PostID, true
		case models.PostCommentMetadata:
			return meta.CommentMetadata.CommentID, true
		}
	}
	return "", false
}

// runStudentIP extracts the per-student IP observations: de-duplicated,
// sorted, and optionally enriched with a resolved location. An address
// the resolver cannot place stays in the output with a null location;
// it is counted, not fatal.
func (p *Pipeline) runStudentIP(ctx context.Context, records [][]byte, locate bool, stats *Stats) ([]any, error) {
	seen := make(map[string]bool)
	var items []*models.StudentIP
	for _, raw := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := p.classifier.ExtractStudentIP(raw)
		if err != nil {
			if errors.Is(err, classifier.ErrMalformedRecord) {
				stats.Malformed++
			} else {
				stats.Dropped++
			}
			continue
		}
		key := fmt.Sprintf("%v\x00%s\x00%s", item.StudentID, item.Username, item.IP)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := fmt.Sprintf("%012v", items[i].StudentID), fmt.Sprintf("%012v", items[j].StudentID)
		if a != b {
			return a < b
		}
		if items[i].Username != items[j].Username {
			return items[i].Username < items[j].Username
		}
		return items[i].IP < items[j].IP
	})

	if locate {
		if p.opts.Resolver == nil {
			return nil, errors.New("location enrichment requested but no resolver configured")
		}
		for _, item := range items {
			loc, err := p.opts.Resolver.Resolve(item.IP)
			if err != nil {
				stats.GeoUnknown++
				logging.Warn().Str("ip", item.IP).Msg("IP not found in range table")
				continue
			}
			item.Location = loc
		}
	}

	docs := make([]any, len(items))
	for i, item := range items {
		docs[i] = item
	}
	stats.Classified = len(items)
	return docs, nil
}
