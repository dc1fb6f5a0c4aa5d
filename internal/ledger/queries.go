// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"slices"

	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/model"
)

// HistoryFilter narrows History. Empty fields match everything.
type HistoryFilter struct {
	KeyID      string
	UserID     string
	ActiveOnly bool
}

func (f HistoryFilter) matches(a model.Assignment) bool {
	if f.KeyID != "" && a.KeyID != f.KeyID {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if f.ActiveOnly && !a.IsActive() {
		return false
	}
	return true
}

// Stats summarizes the ledger for the dashboard.
type Stats struct {
	Keys              int
	AvailableKeys     int
	AssignedKeys      int
	Users             int
	ActiveAssignments int
	TotalAssignments  int
}

// Keys returns a copy of all keys in insertion order.
func (l *Ledger) Keys() []model.Key {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.keys)
}

// Users returns a copy of all employees in insertion order.
func (l *Ledger) Users() []model.User {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.users)
}

// Assignments returns a copy of the full assignment history, oldest first.
func (l *Ledger) Assignments() []model.Assignment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Assignment, len(l.assignments))
	for i, a := range l.assignments {
		out[i] = cloneAssignment(a)
	}
	return out
}

// Key looks up a key by id.
func (l *Ledger) Key(id string) (model.Key, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.keyIndex(id); i >= 0 {
		return l.keys[i], true
	}
	return model.Key{}, false
}

// User looks up an employee by id.
func (l *Ledger) User(id string) (model.User, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.userIndex(id); i >= 0 {
		return l.users[i], true
	}
	return model.User{}, false
}

// Assignment looks up an assignment by id.
func (l *Ledger) Assignment(id string) (model.Assignment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.assignmentIndex(id); i >= 0 {
		return cloneAssignment(l.assignments[i]), true
	}
	return model.Assignment{}, false
}

// KeyByBarcode returns the first key whose barcode matches exactly.
func (l *Ledger) KeyByBarcode(barcode string) (model.Key, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.keyByBarcodeLocked(barcode)
}

func (l *Ledger) keyByBarcodeLocked(barcode string) (model.Key, bool) {
	for _, k := range l.keys {
		if k.Barcode == barcode {
			return k, true
		}
	}
	return model.Key{}, false
}

// OpenAssignmentForKey returns the open assignment of keyID, if any.
func (l *Ledger) OpenAssignmentForKey(keyID string) (model.Assignment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.openAssignmentIndex(keyID); i >= 0 {
		return cloneAssignment(l.assignments[i]), true
	}
	return model.Assignment{}, false
}

// ActiveAssignments returns the open assignments, oldest first.
func (l *Ledger) ActiveAssignments() []model.Assignment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Assignment
	for _, a := range l.assignments {
		if a.IsActive() {
			out = append(out, cloneAssignment(a))
		}
	}
	return out
}

// History returns the assignments matching f, newest first.
func (l *Ledger) History(f HistoryFilter) []model.Assignment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Assignment
	for i := len(l.assignments) - 1; i >= 0; i-- {
		if f.matches(l.assignments[i]) {
			out = append(out, cloneAssignment(l.assignments[i]))
		}
	}
	return out
}

// KeyName returns the display name of a key, or the translated "unknown key"
// placeholder when the id no longer resolves.
func (l *Ledger) KeyName(id string) string {
	if k, ok := l.Key(id); ok {
		return k.Name
	}
	return i18n.T("placeholder.unknown_key")
}

// UserName returns the display name of an employee, or the translated
// "unknown user" placeholder when the id no longer resolves.
func (l *Ledger) UserName(id string) string {
	if u, ok := l.User(id); ok {
		return u.Name
	}
	return i18n.T("placeholder.unknown_user")
}

// Stats returns dashboard totals.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Stats{
		Keys:             len(l.keys),
		Users:            len(l.users),
		TotalAssignments: len(l.assignments),
	}
	for _, k := range l.keys {
		if k.IsAvailable {
			s.AvailableKeys++
		} else {
			s.AssignedKeys++
		}
	}
	for _, a := range l.assignments {
		if a.IsActive() {
			s.ActiveAssignments++
		}
	}
	return s
}
