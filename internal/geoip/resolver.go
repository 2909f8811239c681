// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package geoip resolves client IP addresses to locations using a tiered
// cascade over an authoritative range table.
//
// The table is ground truth; two derived caches sit in front of it. The
// exact cache maps a previously resolved address straight to its
// location. The range cache holds every table row that has ever matched,
// so addresses near a known one resolve without rescanning the table.
// Both caches persist as append-only JSON-lines logs replayed into
// memory at startup; neither is ever consulted as a substitute for a
// missing table.
package geoip

import (
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/metrics"
	"github.com/epfl-cede/pyedx/internal/models"
)

// ErrTableUnavailable means the authoritative range table is missing.
// Nothing can ever resolve without it, so construction fails.
var ErrTableUnavailable = errors.New("authoritative range table unavailable")

// ErrLocationUnknown means every cache and table tier was exhausted
// without a containing range. It is a terminal per-address outcome, not
// a resolver failure.
var ErrLocationUnknown = errors.New("location unknown")

// Prefix masks for the four cascade levels, finest first. The last level
// is unconstrained: any range in the source is a candidate.
var cascadeMasks = [4]uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000, 0}

// exactEntry is one persisted exact-cache record.
type exactEntry struct {
	IP       string             `json:"IP"`
	Location models.GeoLocation `json:"Location"`
}

// Resolver answers location queries for IPv4 addresses. Reads may run
// concurrently; write-back after a table hit takes the write lock.
type Resolver struct {
	mu     sync.RWMutex
	exact  map[string]models.GeoLocation
	ranges []rangeEntry
	table  []rangeEntry

	exactLog *cacheLog
	rangeLog *cacheLog
}

// Options locates the resolver's backing files.
type Options struct {
	TablePath      string
	ExactCachePath string
	RangeCachePath string
}

// NewResolver loads the authoritative table and replays both cache logs.
// A missing table is ErrTableUnavailable; missing cache logs are fresh
// caches, created on first write-back.
func NewResolver(opts Options) (*Resolver, error) {
	table, err := loadTable(opts.TablePath)
	if err != nil {
		return nil, errors.Join(ErrTableUnavailable, err)
	}

	r := &Resolver{
		exact: make(map[string]models.GeoLocation),
		table: table,
	}

	r.exactLog, err = openCacheLog(opts.ExactCachePath)
	if err != nil {
		return nil, err
	}
	r.rangeLog, err = openCacheLog(opts.RangeCachePath)
	if err != nil {
		r.exactLog.Close()
		return nil, err
	}

	if err := r.replayCaches(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// replayCaches rebuilds the in-memory indexes from the persisted logs.
// Duplicate entries are tolerated: the exact map keeps the first record
// for an address, and range lookups honor the first containing entry.
func (r *Resolver) replayCaches() error {
	err := r.exactLog.Replay(func(data []byte) {
		var e exactEntry
		if json.Unmarshal(data, &e) != nil {
			return
		}
		if _, ok := r.exact[e.IP]; !ok {
			r.exact[e.IP] = e.Location
		}
	})
	if err != nil {
		return err
	}
	return r.rangeLog.Replay(func(data []byte) {
		var loc models.GeoLocation
		if json.Unmarshal(data, &loc) != nil {
			return
		}
		start, ok := ipToUint32(loc.LocalIPRange.Start)
		if !ok {
			return
		}
		end, ok := ipToUint32(loc.LocalIPRange.End)
		if !ok {
			return
		}
		r.ranges = append(r.ranges, rangeEntry{start: start, end: end, loc: loc})
	})
}

// Close releases the cache log files. The in-memory state stays usable
// but write-back stops persisting.
func (r *Resolver) Close() error {
	err1 := r.exactLog.Close()
	err2 := r.rangeLog.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Resolve maps an IPv4 address to its location.
//
// Lookup order: the exact cache, then the range cache at each of the four
// prefix levels (/24, /16, /8, unconstrained), then the authoritative
// table at the same four levels. The first containing range wins. A hit
// below the exact cache is written back to both caches so repeat or
// nearby queries short-circuit. Exhaustion returns ErrLocationUnknown
// with no cache writes.
func (r *Resolver) Resolve(ip string) (*models.GeoLocation, error) {
	addr, ok := ipToUint32(ip)
	if !ok {
		return nil, ErrLocationUnknown
	}

	r.mu.RLock()
	if loc, ok := r.exact[ip]; ok {
		r.mu.RUnlock()
		metrics.GeoTierHits.WithLabelValues("exact").Inc()
		return &loc, nil
	}
	sources := [2]struct {
		tier    string
		entries []rangeEntry
	}{
		{"range_cache", r.ranges},
		{"table", r.table},
	}
	for _, source := range sources {
		for _, mask := range cascadeMasks {
			if entry, ok := scanRanges(source.entries, addr, mask); ok {
				r.mu.RUnlock()
				r.writeBack(ip, entry)
				metrics.GeoTierHits.WithLabelValues(source.tier).Inc()
				loc := entry.loc
				return &loc, nil
			}
		}
	}
	r.mu.RUnlock()
	metrics.GeoUnknown.Inc()
	return nil, ErrLocationUnknown
}

// scanRanges finds the first entry containing addr among the entries
// whose start or end bound shares the masked prefix with addr.
func scanRanges(entries []rangeEntry, addr, mask uint32) (rangeEntry, bool) {
	prefix := addr & mask
	for _, e := range entries {
		if e.start&mask != prefix && e.end&mask != prefix {
			continue
		}
		if e.start <= addr && addr <= e.end {
			return e, true
		}
	}
	return rangeEntry{}, false
}

// writeBack records a resolution in both caches, in memory and on disk.
// Duplicate range entries are acceptable; an exact entry is only the
// first resolution for its address.
func (r *Resolver) writeBack(ip string, entry rangeEntry) {
	r.mu.Lock()
	if _, ok := r.exact[ip]; !ok {
		r.exact[ip] = entry.loc
	}
	r.ranges = append(r.ranges, entry)
	r.mu.Unlock()

	r.exactLog.Append(exactEntry{IP: ip, Location: entry.loc})
	r.rangeLog.Append(entry.loc)
}
