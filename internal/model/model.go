// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the records tracked by Keyledger: physical keys,
// the employees who may hold them, and the custody assignments between them.
package model // import "github.com/toeirei/keyledger/internal/model"

import (
	"fmt"
	"time"
)

// Key is a tracked physical key or access item.
// IsAvailable is false exactly while an assignment for the key is open.
type Key struct {
	ID          string    `json:"id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

// String returns the display name followed by the barcode.
func (k Key) String() string {
	if k.Location == "" {
		return fmt.Sprintf("%s [%s]", k.Name, k.Barcode)
	}
	return fmt.Sprintf("%s [%s] (%s)", k.Name, k.Barcode, k.Location)
}

// KeyInput holds the mutable fields of a Key.
type KeyInput struct {
	Barcode     string
	Name        string
	Description string
	Location    string
}

// User is an employee who may hold keys.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// String returns "Name <email>".
func (u User) String() string {
	if u.Email == "" {
		return u.Name
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

// UserInput holds the mutable fields of a User.
type UserInput struct {
	Name       string
	Email      string
	Department string
}
