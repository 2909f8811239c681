// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package geoip

import (
	"bufio"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/logging"
)

// cacheLog is an append-only JSON-lines file. Each Append is a single
// Write of one marshaled line, so concurrent appenders from one process
// never interleave bytes. The file survives the process; Replay rebuilds
// the in-memory index from it at startup.
type cacheLog struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func openCacheLog(path string) (*cacheLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &cacheLog{path: path, f: f}, nil
}

// Append writes one entry. Failure to persist is logged and swallowed:
// the in-memory cache already holds the entry, so losing the durable copy
// only costs a re-derivation on the next run.
func (l *cacheLog) Append(entry any) {
	data, err := json.Marshal(entry)
	if err != nil {
		logging.Warn().Err(err).Str("path", l.path).Msg("Could not encode cache entry")
		return
	}
	data = append(data, '\n')
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(data); err != nil {
		logging.Warn().Err(err).Str("path", l.path).Msg("Could not append cache entry")
	}
}

// Replay streams every previously persisted entry to fn. A line that no
// longer decodes (torn write from a crashed run) is skipped.
func (l *cacheLog) Replay(fn func(data []byte)) error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			logging.Warn().Str("path", l.path).Msg("Skipping undecodable cache log line")
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

func (l *cacheLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
