// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package main is the pyedx command line driver.
//
// One invocation processes one input file into one clean JSON-lines
// output file:
//
//	pyedx -class Click -in tracking.log.gz -out clean/click.json.gz
//	pyedx -class StudentIP -in tracking.log -out clean/ips.json -locate
//	pyedx -class Video -in 2014-06-01/CS305/video/ab12.xml -out clean/videos.json
//
// Item classes Click, Forum, SignUp, and StudentIP read tracking logs or
// database exports; Video and Problem read course XML exports. Existing
// output files are never overwritten without -replace.
//
// Configuration (geolocation table path, cache paths, sink, workers)
// loads from pyedx.yaml and PYEDX_-prefixed environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epfl-cede/pyedx/internal/config"
	"github.com/epfl-cede/pyedx/internal/content"
	"github.com/epfl-cede/pyedx/internal/geoip"
	"github.com/epfl-cede/pyedx/internal/logging"
	"github.com/epfl-cede/pyedx/internal/models"
	"github.com/epfl-cede/pyedx/internal/pipeline"
	"github.com/epfl-cede/pyedx/internal/sink"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		classFlag   = flag.String("class", "", "item class: Click, Forum, SignUp, StudentIP, Video, or Problem")
		inFlag      = flag.String("in", "", "input file path")
		outFlag     = flag.String("out", "", "output file path (.gz for compressed)")
		locateFlag  = flag.Bool("locate", false, "resolve locations for StudentIP runs")
		replaceFlag = flag.Bool("replace", false, "overwrite the output file if it exists")
		sinkFlag    = flag.Bool("sink", false, "also upsert documents into the configured sink database")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if *classFlag == "" || *inFlag == "" || *outFlag == "" {
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *classFlag {
	case "Video", "Problem":
		return runContent(ctx, cfg, *classFlag, *inFlag, *outFlag, *replaceFlag, *sinkFlag)
	default:
		return runPipeline(ctx, cfg, *classFlag, *inFlag, *outFlag, *locateFlag, *replaceFlag, *sinkFlag)
	}
}

func runPipeline(ctx context.Context, cfg *config.Config, class, in, out string, locate, replace, useSink bool) int {
	itemClass, err := pipeline.ParseItemClass(class)
	if err != nil {
		logging.Error().Err(err).Msg("Invalid item class")
		return 2
	}

	opts := pipeline.Options{Workers: cfg.Pipeline.Workers}

	if locate && itemClass == pipeline.ClassStudentIP {
		resolver, err := geoip.NewResolver(geoip.Options{
			TablePath:      cfg.GeoIP.TablePath,
			ExactCachePath: cfg.GeoIP.ExactCachePath,
			RangeCachePath: cfg.GeoIP.RangeCachePath,
		})
		if err != nil {
			logging.Error().Err(err).Str("table", cfg.GeoIP.TablePath).Msg("Cannot initialize geolocation resolver")
			return 1
		}
		defer resolver.Close()
		opts.Resolver = resolver
	}

	if useSink || cfg.Sink.Enabled {
		store, err := sink.OpenDuckDB(cfg.Sink.Path, class)
		if err != nil {
			logging.Error().Err(err).Msg("Cannot open sink database")
			return 1
		}
		defer store.Close()
		opts.Sink = store
	}

	stats, err := pipeline.New(opts).RunAndSave(ctx, itemClass, in, out, locate, replace)
	if err != nil {
		if errors.Is(err, pipeline.ErrOutputExists) {
			logging.Warn().Str("out", out).Msg("Output file already exists; use -replace to overwrite")
			return 1
		}
		logging.Error().Err(err).Msg("Run failed")
		return 1
	}

	fmt.Printf("[%s] parsed=%d classified=%d dropped=%d malformed=%d geo_unknown=%d elapsed=%s\n",
		stats.Class, stats.Parsed, stats.Classified, stats.Dropped, stats.Malformed,
		stats.GeoUnknown, stats.Elapsed.Round(time.Millisecond))
	return 0
}

func runContent(ctx context.Context, cfg *config.Config, class, in, out string, replace, useSink bool) int {
	var docs []any

	switch class {
	case "Video":
		client := content.NewYouTubeClient(cfg.Content.DurationEndpoint)
		client.KeepAlive = cfg.Content.KeepAlive
		videos, err := content.ParseVideoFile(ctx, in, client.Duration)
		if err != nil {
			logging.Error().Err(err).Str("in", in).Msg("Video scrape failed")
			return 1
		}
		for _, v := range videos {
			docs = append(docs, v)
		}
	case "Problem":
		problems, err := content.ParseProblemFile(in)
		if err != nil {
			logging.Error().Err(err).Str("in", in).Msg("Problem scrape failed")
			return 1
		}
		for _, p := range problems {
			docs = append(docs, p)
		}
	}

	if useSink || cfg.Sink.Enabled {
		store, err := sink.OpenDuckDB(cfg.Sink.Path, class)
		if err != nil {
			logging.Error().Err(err).Msg("Cannot open sink database")
			return 1
		}
		defer store.Close()
		for _, doc := range docs {
			key := contentKey(doc)
			if err := store.Upsert(ctx, key, doc); err != nil {
				logging.Warn().Err(err).Str("key", key).Msg("Sink rejected document")
			}
		}
	}

	if err := pipeline.SaveDocuments(out, docs, replace); err != nil {
		if errors.Is(err, pipeline.ErrOutputExists) {
			logging.Warn().Str("out", out).Msg("Output file already exists; use -replace to overwrite")
			return 1
		}
		logging.Error().Err(err).Msg("Save failed")
		return 1
	}
	fmt.Printf("[%s] scraped=%d\n", class, len(docs))
	return 0
}

func contentKey(doc any) string {
	switch d := doc.(type) {
	case models.VideoContent:
		return d.VideoID
	case models.ProblemContent:
		return d.ProblemID
	}
	return ""
}
