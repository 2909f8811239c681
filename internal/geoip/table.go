// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package geoip

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/epfl-cede/pyedx/internal/logging"
	"github.com/epfl-cede/pyedx/internal/models"
)

// rangeEntry is one row of the authoritative table (or the range cache)
// indexed for numeric containment tests.
type rangeEntry struct {
	start uint32
	end   uint32
	loc   models.GeoLocation
}

// ipToUint32 converts a dotted-quad address to its numeric form.
func ipToUint32(ip string) (uint32, bool) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return 0, false
	}
	b := addr.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

// parseTableRow parses one authoritative table row:
// start,end,cc,district,city,lat,lon,tzoffset,tzname
func parseTableRow(line string) (rangeEntry, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 9 {
		return rangeEntry{}, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}
	start, ok := ipToUint32(fields[0])
	if !ok {
		return rangeEntry{}, fmt.Errorf("bad start address %q", fields[0])
	}
	end, ok := ipToUint32(fields[1])
	if !ok {
		return rangeEntry{}, fmt.Errorf("bad end address %q", fields[1])
	}
	code := fields[2]
	return rangeEntry{
		start: start,
		end:   end,
		loc: models.GeoLocation{
			LocalIPRange: models.IPRange{Start: fields[0], End: fields[1]},
			Country:      models.Country{Code: code, Name: CountryName(code)},
			District:     fields[3],
			City:         fields[4],
			Coordinates:  models.Coordinates{Latitude: fields[5], Longitude: fields[6]},
			TimeZone:     models.TimeZone{Offset: fields[7], Name: fields[8]},
		},
	}, nil
}

// loadTable reads the authoritative range table. A malformed row is a
// per-row problem: log it, skip it, keep the rest of the table.
func loadTable(path string) ([]rangeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []rangeEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := parseTableRow(line)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Int("line", lineNo).Msg("Skipping malformed range table row")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
