// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/epfl-cede/pyedx/internal/logging"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key        VARCHAR PRIMARY KEY,
	class      VARCHAR NOT NULL,
	doc        JSON NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const upsertQuery = `
INSERT INTO documents (key, class, doc, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
	class = excluded.class,
	doc = excluded.doc,
	updated_at = excluded.updated_at`

// DuckDBSink stores documents in a single DuckDB table keyed by the
// document identity. Upserting the same key twice leaves one row.
type DuckDBSink struct {
	db    *sql.DB
	class string
}

// OpenDuckDB opens (or creates) the sink database at path and ensures
// the documents table exists. The class label is stored with each
// document so mixed stores stay queryable per item class.
func OpenDuckDB(path, class string) (*DuckDBSink, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open sink database: %w", err)
	}
	if _, err := db.Exec(documentsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	logging.Info().Str("path", path).Str("class", class).Msg("Sink database ready")
	return &DuckDBSink{db: db, class: class}, nil
}

// Upsert writes one document. The JSON encoding happens here so callers
// hand over their typed document as-is.
func (s *DuckDBSink) Upsert(ctx context.Context, key string, doc any) error {
	if key == "" {
		return fmt.Errorf("empty sink key")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery, key, s.class, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *DuckDBSink) Close() error {
	return s.db.Close()
}
