// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"
)

func TestBunStore_LoadMissing(t *testing.T) {
	s := newTestBunStore(t)
	_, found, err := s.Load(context.Background(), CollectionKeys)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if found {
		t.Fatalf("expected missing collection to report found=false")
	}
}

func TestBunStore_SaveLoadOverwriteRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestBunStore(t)

	if err := s.Save(ctx, CollectionKeys, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := s.Save(ctx, CollectionKeys, []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, found, err := s.Load(ctx, CollectionKeys)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if string(got) != `[{"id":"2"}]` {
		t.Fatalf("expected overwritten payload, got %s", got)
	}

	if err := s.Save(ctx, CollectionUsers, []byte(`[]`)); err != nil {
		t.Fatalf("Save users failed: %v", err)
	}
	names, err := s.Names(ctx)
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 2 || names[0] != CollectionKeys || names[1] != CollectionUsers {
		t.Fatalf("unexpected names: %v", names)
	}

	if err := s.Remove(ctx, CollectionKeys); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, found, _ := s.Load(ctx, CollectionKeys); found {
		t.Fatalf("collection still present after Remove")
	}
	if err := s.Remove(ctx, CollectionKeys); err != nil {
		t.Fatalf("removing a missing collection should not fail: %v", err)
	}
}

func TestBunStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + t.TempDir() + "/ledger.db"

	s1, err := NewStoreFromDSN(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.Save(ctx, CollectionAssignments, []byte(`[{"id":"a1"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s1.Close()

	s2, err := NewStoreFromDSN(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	got, found, err := s2.Load(ctx, CollectionAssignments)
	if err != nil || !found {
		t.Fatalf("Load after reopen: found=%v err=%v", found, err)
	}
	if string(got) != `[{"id":"a1"}]` {
		t.Fatalf("unexpected payload after reopen: %s", got)
	}
}
