// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "testing"

// newTestBunStore opens an in-memory sqlite BunStore private to the test.
func newTestBunStore(t *testing.T) *BunStore {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	bs, ok := s.(*BunStore)
	if !ok {
		t.Fatalf("expected *BunStore, got %T", s)
	}
	t.Cleanup(func() { _ = bs.Close() })
	return bs
}
