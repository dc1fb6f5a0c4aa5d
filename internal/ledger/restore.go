// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/toeirei/keyledger/internal/model"
)

// Export returns a consistent copy of all three collections.
func (l *Ledger) Export() model.BackupData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	data := model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		ExportedAt:    l.clock.Now(),
		Keys:          slices.Clone(l.keys),
		Users:         slices.Clone(l.users),
		Assignments:   make([]model.Assignment, len(l.assignments)),
	}
	for i, a := range l.assignments {
		data.Assignments[i] = cloneAssignment(a)
	}
	return data
}

// Restore replaces the whole ledger with data and persists every collection.
// A backup is refused, leaving the ledger untouched, when its schema version
// is missing or newer than ours and when any key has more than one open
// assignment. Key availability is re-derived from the open assignments
// before saving.
func (l *Ledger) Restore(ctx context.Context, data model.BackupData) error {
	if data.SchemaVersion < 1 {
		return fmt.Errorf("backup has no schema version: %w", ErrInvalidBackup)
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return fmt.Errorf("backup schema version %d is newer than supported version %d: %w", data.SchemaVersion, model.BackupSchemaVersion, ErrInvalidBackup)
	}
	for _, v := range verifyCollections(data.Keys, data.Users, data.Assignments) {
		if v.Kind == model.ViolationMultipleOpen {
			return fmt.Errorf("backup rejected (%s): %w", v, ErrInvalidBackup)
		}
	}

	keys := slices.Clone(data.Keys)
	assignments := make([]model.Assignment, len(data.Assignments))
	for i, a := range data.Assignments {
		assignments[i] = cloneAssignment(a)
	}
	if n := l.deriveAvailability(keys, assignments); n > 0 {
		l.log.Warnf("ledger: corrected availability of %d keys from backup", n)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.keys = keys
	l.users = slices.Clone(data.Users)
	l.assignments = assignments
	l.log.Infof("ledger: restored %d keys, %d users, %d assignments", len(l.keys), len(l.users), len(l.assignments))

	if err := l.saveKeys(ctx); err != nil {
		return err
	}
	if err := l.saveUsers(ctx); err != nil {
		return err
	}
	return l.saveAssignments(ctx)
}
