// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestRunMigrationsSqlite_Idempotent(t *testing.T) {
	dbConn, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = dbConn.Close() }()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(dbConn, TypeSQLite); err != nil {
			t.Fatalf("RunMigrations pass %d failed: %v", i+1, err)
		}
	}

	var count int
	if err := dbConn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", count)
	}
	if _, err := dbConn.Exec("SELECT name, payload, updated_at FROM collections"); err != nil {
		t.Fatalf("collections table missing: %v", err)
	}
}

func TestNewStoreFromDSN_Backends(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "x"); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
	s, err := NewStoreFromDSN(TypeMemory, "")
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", s)
	}
	if _, err := NewStoreFromDSN(TypeRedis, "not a url"); err == nil {
		t.Fatalf("expected error for invalid redis dsn")
	}
}

func TestDBPoolDefaultsSQLite(t *testing.T) {
	t.Setenv("KEYLEDGER_DB_MAX_OPEN_CONNS", "")
	t.Setenv("KEYLEDGER_DB_MAX_IDLE_CONNS", "")

	s := newTestBunStore(t)
	if got := s.BunDB().DB.Stats().MaxOpenConnections; got != 25 {
		t.Fatalf("MaxOpenConnections = %d; want 25", got)
	}
}

func TestDBPoolMemoryForcesSingleConnection(t *testing.T) {
	s, err := NewStoreFromDSN(TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewStoreFromDSN: %v", err)
	}
	defer func() { _ = s.Close() }()
	if got := s.(*BunStore).BunDB().DB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d; want 1", got)
	}
}

func TestDBPoolEnvOverride(t *testing.T) {
	t.Setenv("KEYLEDGER_DB_MAX_OPEN_CONNS", "3")
	s := newTestBunStore(t)
	if got := s.BunDB().DB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("MaxOpenConnections = %d; want 3", got)
	}
}

func TestRunDBMaintenance_Sqlite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + t.TempDir() + "/maint.db"
	s, err := NewStoreFromDSN(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Save(ctx, CollectionKeys, []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := RunDBMaintenance(ctx, TypeSQLite, dsn); err != nil {
		t.Fatalf("RunDBMaintenance(sqlite) failed: %v", err)
	}
	if _, found, err := s.Load(ctx, CollectionKeys); err != nil || !found {
		t.Fatalf("Load after maintenance: found=%v err=%v", found, err)
	}
}

func TestRunDBMaintenance_Unsupported(t *testing.T) {
	if err := RunDBMaintenance(context.Background(), TypeRedis, "redis://localhost"); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
	got := MapDBError(errors.New("UNIQUE constraint failed: collections.name"))
	if !errors.Is(got, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", got)
	}
	if !strings.Contains(got.Error(), "collections.name") {
		t.Fatalf("driver message should be kept, got %q", got)
	}
	other := errors.New("disk I/O error")
	if got := MapDBError(other); got != other {
		t.Fatalf("unrelated errors must pass through, got %v", got)
	}
}

// Cross-backend integration checks. These run only when the corresponding
// DSN environment variable is set.
func TestCrossBackend(t *testing.T) {
	cases := []struct {
		env    string
		dbType string
	}{
		{"POSTGRES_DSN", TypePostgres},
		{"MYSQL_DSN", TypeMySQL},
		{"REDIS_DSN", TypeRedis},
	}
	for _, tc := range cases {
		t.Run(tc.dbType, func(t *testing.T) {
			dsn := os.Getenv(tc.env)
			if dsn == "" {
				t.Skipf("%s not set; skipping %s integration test", tc.env, tc.dbType)
			}
			ctx := context.Background()
			s, err := NewStoreFromDSN(tc.dbType, dsn)
			if err != nil {
				t.Fatalf("%s open failed: %v", tc.dbType, err)
			}
			defer func() { _ = s.Close() }()
			name := "it_" + tc.dbType
			if err := s.Save(ctx, name, []byte(`[1]`)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, found, err := s.Load(ctx, name)
			if err != nil || !found || string(got) != `[1]` {
				t.Fatalf("Load: %q found=%v err=%v", got, found, err)
			}
			if err := s.Remove(ctx, name); err != nil {
				t.Fatalf("Remove: %v", err)
			}
		})
	}
}
