// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"io"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/model"
)

var testEpoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	l     *Ledger
	store *db.MemoryStore
	clock *FakeClock
}

// newFixture returns a hydrated ledger over a MemoryStore with a fake clock
// and sequential ids ("id-1", "id-2", ...).
func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	store := db.NewMemoryStore()
	clock := NewFakeClock(testEpoch)
	all := append([]Option{
		WithClock(clock),
		WithIDGenerator(&SequenceGenerator{Prefix: "id-"}),
		WithLogger(clog.New(io.Discard)),
	}, opts...)
	l := New(store, all...)
	if err := l.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	store.ResetWrites()
	return fixture{l: l, store: store, clock: clock}
}

func mustAddKey(t *testing.T, l *Ledger, barcode, name string) model.Key {
	t.Helper()
	k, err := l.AddKey(context.Background(), model.KeyInput{Barcode: barcode, Name: name})
	if err != nil {
		t.Fatalf("AddKey(%s) failed: %v", barcode, err)
	}
	return k
}

func mustAddUser(t *testing.T, l *Ledger, name string) model.User {
	t.Helper()
	u, err := l.AddUser(context.Background(), model.UserInput{Name: name})
	if err != nil {
		t.Fatalf("AddUser(%s) failed: %v", name, err)
	}
	return u
}

func mustAssign(t *testing.T, l *Ledger, keyID, userID string) model.Assignment {
	t.Helper()
	a, err := l.AssignKey(context.Background(), keyID, userID, "")
	if err != nil {
		t.Fatalf("AssignKey(%s, %s) failed: %v", keyID, userID, err)
	}
	return a
}

// assertAvailabilityInvariant checks that every key is unavailable exactly
// when it has an open assignment.
func assertAvailabilityInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	open := map[string]int{}
	for _, a := range l.ActiveAssignments() {
		open[a.KeyID]++
	}
	for _, k := range l.Keys() {
		if open[k.ID] > 1 {
			t.Errorf("key %s has %d open assignments", k.ID, open[k.ID])
		}
		if k.IsAvailable == (open[k.ID] > 0) {
			t.Errorf("key %s: IsAvailable=%t but open assignments=%d", k.ID, k.IsAvailable, open[k.ID])
		}
	}
}
