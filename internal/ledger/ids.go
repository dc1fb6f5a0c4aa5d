// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator hands out record identifiers. Identifiers must be unique
// within a collection.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces time-ordered UUIDv7 identifiers.
type UUIDGenerator struct{}

// NewID returns a new UUIDv7. If the random source fails it falls back to a
// random UUIDv4.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SequenceGenerator produces prefix1, prefix2, ... and is used by tests.
type SequenceGenerator struct {
	mu     sync.Mutex
	Prefix string
	next   int
}

// NewID returns the next identifier in the sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.Prefix + strconv.Itoa(g.next)
}
