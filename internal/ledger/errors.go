// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import "errors"

var (
	// ErrNotFound is returned when a mutation names a key, user or
	// assignment that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a mutation would break the custody
	// invariant, e.g. assigning a key that is already out.
	ErrConflict = errors.New("conflict")

	// ErrInvalidBackup is returned by Restore for data that cannot be loaded
	// without breaking the custody invariant.
	ErrInvalidBackup = errors.New("invalid backup")
)
