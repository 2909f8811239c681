// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxRecordSize bounds a single input line. Tracking logs occasionally
// carry multi-megabyte embedded payloads; 16 MiB covers everything seen
// in practice.
const maxRecordSize = 16 * 1024 * 1024

// readRecords loads one input file into per-record byte slices.
//
// JSON-lines files (.log, .json, .mongo, and their .gz forms) yield one
// record per line. Tabular exports (.csv, .sql) go through the import
// normalization and yield one JSON object per data row.
func readRecords(path string) ([][]byte, error) {
	switch {
	case strings.HasSuffix(path, ".log.gz") || strings.HasSuffix(path, ".json.gz"):
		return readLines(path, true)
	case strings.HasSuffix(path, ".log") || strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".mongo"):
		return readLines(path, false)
	case strings.HasSuffix(path, ".csv") || strings.HasSuffix(path, ".sql"):
		return importTable(path)
	default:
		return nil, fmt.Errorf("unsupported input file type: %s", path)
	}
}

func readLines(path string, compressed bool) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var records [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxRecordSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
