// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the persistent store adapter used by Keyledger.
//
// The ledger persists a handful of named collections (keys, users,
// assignments and the operator session). Each collection is stored as one
// serialized JSON document, so every backend only has to implement the small
// Store interface: load, save and remove a named payload.
//
// Backends
//   - BunStore keeps the payloads in a single `collections` table on SQLite,
//     PostgreSQL or MySQL. The schema is created by embedded per-dialect
//     migrations tracked in `schema_migrations`.
//   - RedisStore keeps each payload as one Redis string under `<prefix>:<name>`.
//   - MemoryStore is a map-backed fake for tests. It supports failure
//     injection through FailSave and FailLoad.
//
// Serialization lives in collection.go (LoadCollection, SaveCollection,
// LoadRecord, SaveRecord). A payload that cannot be parsed is reported as
// ErrCorrupt.
//
// Testing notes
//   - Prefer `NewStoreFromDSN("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")`
//     in tests that need real SQL semantics and migrations.
//   - Use NewMemoryStore for fast unit tests of the ledger.
package db
