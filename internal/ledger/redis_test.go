// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"io"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	clog "github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/toeirei/keyledger/internal/db"
)

func TestLedger_PersistsThroughRedis(t *testing.T) {
	ctx := context.Background()
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer server.Close()

	open := func() (*Ledger, db.Store) {
		s, err := db.NewRedisStore("redis://"+server.Addr()+"/0", "")
		if err != nil {
			t.Fatalf("NewRedisStore: %v", err)
		}
		l := New(s,
			WithClock(NewFakeClock(testEpoch)),
			WithIDGenerator(&SequenceGenerator{Prefix: "id-"}),
			WithLogger(clog.New(io.Discard)),
		)
		if err := l.Hydrate(ctx); err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		return l, s
	}

	first, s1 := open()
	mustAddKey(t, first, "555", "Server Room")
	a := mustAssign(t, first, "1", "2")
	_ = s1.Close()

	second, s2 := open()
	defer func() { _ = s2.Close() }()
	if diff := cmp.Diff(first.Keys(), second.Keys()); diff != "" {
		t.Fatalf("keys mismatch after reopen (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Users(), second.Users()); diff != "" {
		t.Fatalf("users mismatch after reopen (-want +got):\n%s", diff)
	}
	active := second.ActiveAssignments()
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("expected open assignment %s after reopen, got %+v", a.ID, active)
	}
	assertAvailabilityInvariant(t, second)
}
