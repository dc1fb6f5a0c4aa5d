// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"

	"github.com/toeirei/keyledger/internal/model"
)

// AddUser registers a new employee. Emails are not checked for uniqueness.
func (l *Ledger) AddUser(ctx context.Context, in model.UserInput) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := model.User{
		ID:         l.ids.NewID(),
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
		CreatedAt:  l.clock.Now(),
	}
	l.users = append(l.users, u)
	l.log.Debugf("ledger: added user %s", u.ID)
	return u, l.saveUsers(ctx)
}

// UpdateUser replaces the mutable fields of an employee.
func (l *Ledger) UpdateUser(ctx context.Context, id string, in model.UserInput) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.userIndex(id)
	if i < 0 {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	u := &l.users[i]
	u.Name = in.Name
	u.Email = in.Email
	u.Department = in.Department
	l.log.Debugf("ledger: updated user %s", id)
	return *u, l.saveUsers(ctx)
}

// DeleteUser removes an employee. An employee who still holds a key cannot
// be deleted.
func (l *Ledger) DeleteUser(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.userIndex(id)
	if i < 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	for _, a := range l.assignments {
		if a.UserID == id && a.IsActive() {
			return fmt.Errorf("user %s holds key %s: %w", id, a.KeyID, ErrConflict)
		}
	}
	l.users = append(l.users[:i:i], l.users[i+1:]...)
	l.log.Debugf("ledger: deleted user %s", id)
	return l.saveUsers(ctx)
}
