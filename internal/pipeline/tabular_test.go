// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

func importRows(t *testing.T, content string) []map[string]string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.sql")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := importTable(path)
	if err != nil {
		t.Fatalf("importTable() error = %v", err)
	}
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		if err := json.Unmarshal(rec, &rows[i]); err != nil {
			t.Fatalf("record %d not valid JSON: %v", i, err)
		}
	}
	return rows
}

func TestImportTable_HeaderKeysRows(t *testing.T) {
	rows := importRows(t, "id\tcourse_id\tuser_id\n1\tEPFLx/CS305/2014\t42\n2\tEPFLx/CS305/2014\t43\n")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["id"] != "1" || rows[0]["course_id"] != "EPFLx/CS305/2014" || rows[0]["user_id"] != "42" {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if rows[1]["user_id"] != "43" {
		t.Errorf("rows[1][user_id] = %q, want 43", rows[1]["user_id"])
	}
}

func TestImportTable_EmptyColumnsBecomeNULL(t *testing.T) {
	// A run of empty columns only exposes a new "||" after the previous
	// expansion; three adjacent tabs must still produce two NULLs.
	rows := importRows(t, "a\tb\tc\td\n1\t\t\t4\n")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["b"] != "NULL" || rows[0]["c"] != "NULL" {
		t.Errorf("empty columns = (%q, %q), want (NULL, NULL)", rows[0]["b"], rows[0]["c"])
	}
	if rows[0]["a"] != "1" || rows[0]["d"] != "4" {
		t.Errorf("bounding columns = (%q, %q), want (1, 4)", rows[0]["a"], rows[0]["d"])
	}
}

func TestImportTable_BrokenNewlinesRepaired(t *testing.T) {
	// A real line break followed by the literal "\n" that caused it
	// collapses to a space, keeping the record on one line.
	rows := importRows(t, "id\tgoals\n1\tlearn Go\n\\nand ship\n")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %v", len(rows), rows)
	}
	if rows[0]["goals"] != "learn Go and ship" {
		t.Errorf("goals = %q, want %q", rows[0]["goals"], "learn Go and ship")
	}
}

func TestImportTable_ShortRowLeavesKeysAbsent(t *testing.T) {
	rows := importRows(t, "a\tb\tc\n1\t2\n")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if _, ok := rows[0]["c"]; ok {
		t.Errorf("short row materialized trailing key: %v", rows[0])
	}
}

func TestImportTable_Empty(t *testing.T) {
	records, err := importTable(writeInput(t, "empty.csv", ""))
	if err != nil {
		t.Fatalf("importTable() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty file, want 0", len(records))
	}
}
