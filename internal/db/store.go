// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/keyledger/internal/db"

import "context"

// Collection names persisted by Keyledger.
const (
	CollectionKeys        = "keys"
	CollectionUsers       = "users"
	CollectionAssignments = "assignments"
	CollectionSession     = "session"
)

// Store persists named collections as opaque serialized payloads.
// Load reports found=false for a collection that was never saved.
type Store interface {
	Load(ctx context.Context, name string) (payload []byte, found bool, err error)
	Save(ctx context.Context, name string, payload []byte) error
	Remove(ctx context.Context, name string) error
	Close() error
}
