// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// Assignment is a single custody event: one key handed to one user.
// ReturnedAt is nil while the key is still out. An assignment is never
// deleted and only ever changes once, when ReturnedAt is set.
type Assignment struct {
	ID         string     `json:"id"`
	KeyID      string     `json:"keyId"`
	UserID     string     `json:"userId"`
	AssignedAt time.Time  `json:"assignedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// IsActive reports whether the key is still out.
func (a Assignment) IsActive() bool {
	return a.ReturnedAt == nil
}

// Duration returns how long the key was out. For an active assignment the
// interval is measured up to now.
func (a Assignment) Duration(now time.Time) time.Duration {
	end := now
	if a.ReturnedAt != nil {
		end = *a.ReturnedAt
	}
	if end.Before(a.AssignedAt) {
		return 0
	}
	return end.Sub(a.AssignedAt)
}

// Session is the authentication state of the current operator.
type Session struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	Login           string    `json:"login"`
	Since           time.Time `json:"since,omitempty"`
}

// Anonymous is the zero session.
var Anonymous = Session{}
