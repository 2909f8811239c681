// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// importTable converts a tab-separated database export (.csv or .sql
// dump) into one JSON object per data row, keyed by the header row.
//
// The export format uses tab delimiters and leaves NULL columns empty,
// so two adjacent tabs mean a missing value. Rewriting tabs to pipes and
// repeatedly expanding "||" to "|NULL|" makes every column explicit;
// the loop is needed because a run of empty columns only exposes a new
// "||" after the previous expansion. Literal "\n" carried inside text
// columns (with any surrounding real line break) is collapsed to a
// space so each record stays on one physical line.
func importTable(path string) ([][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	body := strings.ReplaceAll(string(raw), "\t", "|")
	for strings.Contains(body, "||") {
		body = strings.ReplaceAll(body, "||", "|NULL|")
	}
	for _, broken := range []string{"\n\r\\n", "\r\n\\n", "\n\\n", "\r\\n"} {
		body = strings.ReplaceAll(body, broken, " ")
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	keys := rows[0]
	var records [][]byte
	for _, row := range rows[1:] {
		item := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(row) {
				item[key] = row[i]
			}
		}
		data, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}
	return records, nil
}
