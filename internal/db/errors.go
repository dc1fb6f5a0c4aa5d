// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicate is returned when a concurrent writer inserted the same
	// collection row between our delete and insert.
	ErrDuplicate = errors.New("duplicate record")

	// ErrCorrupt is returned when a persisted payload cannot be parsed.
	ErrCorrupt = errors.New("corrupt collection payload")

	// ErrUnsupportedBackend is returned for an unknown database type.
	ErrUnsupportedBackend = errors.New("unsupported database backend")
)

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate), keeping the
// driver's message in the wrapped error. The mapping is string-based so this
// file does not import the SQL driver packages.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
