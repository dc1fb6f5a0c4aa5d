// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/toeirei/keyledger/internal/model"
)

// Verify checks the custody invariant and reference integrity. A crash
// between the assignment and key writes of AssignKey or ReturnKey leaves the
// key's availability out of step with the history; Verify reports that.
func (l *Ledger) Verify() []model.Violation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return verifyCollections(l.keys, l.users, l.assignments)
}

func verifyCollections(keys []model.Key, users []model.User, assignments []model.Assignment) []model.Violation {
	keyIDs := make(map[string]bool, len(keys))
	for _, k := range keys {
		keyIDs[k.ID] = true
	}
	userIDs := make(map[string]bool, len(users))
	for _, u := range users {
		userIDs[u.ID] = true
	}

	var out []model.Violation
	open := make(map[string][]string)
	for _, a := range assignments {
		if a.ReturnedAt != nil && a.ReturnedAt.Before(a.AssignedAt) {
			out = append(out, model.Violation{
				Kind:           model.ViolationReturnBeforeAssign,
				Classification: model.ViolationWarning,
				KeyID:          a.KeyID,
				UserID:         a.UserID,
				AssignmentIDs:  []string{a.ID},
			})
		}
		if a.IsActive() {
			open[a.KeyID] = append(open[a.KeyID], a.ID)
		}

		class := model.ViolationInfo
		if a.IsActive() {
			class = model.ViolationWarning
		}
		if !keyIDs[a.KeyID] {
			out = append(out, model.Violation{
				Kind:           model.ViolationDanglingKey,
				Classification: class,
				KeyID:          a.KeyID,
				AssignmentIDs:  []string{a.ID},
			})
		}
		if !userIDs[a.UserID] {
			out = append(out, model.Violation{
				Kind:           model.ViolationDanglingUser,
				Classification: class,
				UserID:         a.UserID,
				AssignmentIDs:  []string{a.ID},
			})
		}
	}

	for _, k := range keys {
		ids := open[k.ID]
		switch {
		case len(ids) > 1:
			out = append(out, model.Violation{
				Kind:           model.ViolationMultipleOpen,
				Classification: model.ViolationCritical,
				KeyID:          k.ID,
				AssignmentIDs:  ids,
			})
		case len(ids) == 1 && k.IsAvailable:
			out = append(out, model.Violation{
				Kind:           model.ViolationAvailableWhileOpen,
				Classification: model.ViolationCritical,
				KeyID:          k.ID,
				AssignmentIDs:  ids,
			})
		case len(ids) == 0 && !k.IsAvailable:
			out = append(out, model.Violation{
				Kind:           model.ViolationUnavailableNoOpen,
				Classification: model.ViolationCritical,
				KeyID:          k.ID,
			})
		}
	}
	return out
}

// Repair re-derives every key's availability from the open assignments and
// persists the keys when anything changed. It returns the number of keys
// that were corrected. Multiple open assignments for one key are left for the
// operator to resolve with ReturnKey.
func (l *Ledger) Repair(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fixed := l.deriveAvailability(l.keys, l.assignments)
	if fixed == 0 {
		return 0, nil
	}
	return fixed, l.saveKeys(ctx)
}

// deriveAvailability sets IsAvailable on keys from the open assignments and
// returns how many keys changed.
func (l *Ledger) deriveAvailability(keys []model.Key, assignments []model.Assignment) int {
	open := make(map[string]bool)
	for _, a := range assignments {
		if a.IsActive() {
			open[a.KeyID] = true
		}
	}
	fixed := 0
	for i := range keys {
		want := !open[keys[i].ID]
		if keys[i].IsAvailable != want {
			l.log.Warnf("ledger: repairing availability of key %s (%t -> %t)", keys[i].ID, keys[i].IsAvailable, want)
			keys[i].IsAvailable = want
			fixed++
		}
	}
	return fixed
}
