// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package sink persists normalized documents under stable keys.
//
// Upsert is the only operation and it is idempotent: replaying an input
// file converges the store to the same state, because every document's
// key is derived from the content identity (EventID, forum entity id,
// student id) rather than from ingest position.
package sink

import "context"

// Sink stores one JSON document per key. Implementations must make
// Upsert idempotent: a second Upsert with the same key replaces the
// document, it never duplicates it.
type Sink interface {
	Upsert(ctx context.Context, key string, doc any) error
	Close() error
}
