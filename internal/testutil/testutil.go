// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil builds deterministic ledgers for tests in other packages.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/ledger"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// Ledger bundles a hydrated ledger with the fakes behind it.
type Ledger struct {
	*ledger.Ledger
	Store *db.MemoryStore
	Clock *ledger.FakeClock
}

// NewLedger returns a seeded ledger over a MemoryStore with a fake clock,
// ids "id-1", "id-2", ... and a silent logger. Extra options are applied
// last.
func NewLedger(t testing.TB, opts ...ledger.Option) Ledger {
	t.Helper()
	store := db.NewMemoryStore()
	clock := ledger.NewFakeClock(Epoch)
	all := append([]ledger.Option{
		ledger.WithClock(clock),
		ledger.WithIDGenerator(&ledger.SequenceGenerator{Prefix: "id-"}),
		ledger.WithLogger(clog.New(io.Discard)),
	}, opts...)
	l := ledger.New(store, all...)
	if err := l.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	store.ResetWrites()
	return Ledger{Ledger: l, Store: store, Clock: clock}
}
