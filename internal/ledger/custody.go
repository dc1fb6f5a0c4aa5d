// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"

	"github.com/toeirei/keyledger/internal/model"
)

// AssignKey hands an available key to an employee. The assignment is
// persisted before the key; the two writes are independent.
func (l *Ledger) AssignKey(ctx context.Context, keyID, userID, notes string) (model.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ki := l.keyIndex(keyID)
	if ki < 0 {
		return model.Assignment{}, fmt.Errorf("key %s: %w", keyID, ErrNotFound)
	}
	if l.userIndex(userID) < 0 {
		return model.Assignment{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if !l.keys[ki].IsAvailable {
		return model.Assignment{}, fmt.Errorf("key %s is not available: %w", keyID, ErrConflict)
	}
	if j := l.openAssignmentIndex(keyID); j >= 0 {
		return model.Assignment{}, fmt.Errorf("key %s already has open assignment %s: %w", keyID, l.assignments[j].ID, ErrConflict)
	}

	a := model.Assignment{
		ID:         l.ids.NewID(),
		KeyID:      keyID,
		UserID:     userID,
		AssignedAt: l.clock.Now(),
		Notes:      notes,
	}
	l.assignments = append(l.assignments, a)
	l.keys[ki].IsAvailable = false
	l.log.Debugf("ledger: assigned key %s to user %s (assignment %s)", keyID, userID, a.ID)

	if err := l.saveAssignments(ctx); err != nil {
		return a, err
	}
	return a, l.saveKeys(ctx)
}

// ReturnKey closes an open assignment and makes its key available again.
// Returning an assignment that is already closed changes nothing and returns
// the stored record. If the key was deleted meanwhile only the assignment is
// closed.
func (l *Ledger) ReturnKey(ctx context.Context, assignmentID string) (model.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.returnLocked(ctx, assignmentID)
}

// ReturnByBarcode closes the open assignment of the key with barcode.
func (l *Ledger) ReturnByBarcode(ctx context.Context, barcode string) (model.Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k, ok := l.keyByBarcodeLocked(barcode)
	if !ok {
		return model.Assignment{}, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	j := l.openAssignmentIndex(k.ID)
	if j < 0 {
		return model.Assignment{}, fmt.Errorf("key %s has no open assignment: %w", k.ID, ErrNotFound)
	}
	return l.returnLocked(ctx, l.assignments[j].ID)
}

func (l *Ledger) returnLocked(ctx context.Context, assignmentID string) (model.Assignment, error) {
	i := l.assignmentIndex(assignmentID)
	if i < 0 {
		return model.Assignment{}, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	a := &l.assignments[i]
	if !a.IsActive() {
		return cloneAssignment(*a), nil
	}

	now := l.clock.Now()
	a.ReturnedAt = &now
	ki := l.keyIndex(a.KeyID)
	if ki >= 0 {
		l.keys[ki].IsAvailable = true
	} else {
		l.log.Warnf("ledger: returned assignment %s references deleted key %s", a.ID, a.KeyID)
	}
	l.log.Debugf("ledger: returned assignment %s (key %s)", a.ID, a.KeyID)

	out := cloneAssignment(*a)
	if err := l.saveAssignments(ctx); err != nil {
		return out, err
	}
	if ki < 0 {
		return out, nil
	}
	return out, l.saveKeys(ctx)
}
