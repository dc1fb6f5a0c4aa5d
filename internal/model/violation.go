// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"strings"
)

// ViolationClassification represents the severity of a ledger inconsistency.
type ViolationClassification string

const (
	// ViolationCritical breaks the custody invariant (e.g. a key marked
	// available while an assignment for it is still open).
	ViolationCritical ViolationClassification = "critical"

	// ViolationWarning indicates history that points at records that no
	// longer exist while the key is still out.
	ViolationWarning ViolationClassification = "warning"

	// ViolationInfo is informational only (e.g. closed history referencing a
	// deleted employee).
	ViolationInfo ViolationClassification = "info"
)

// ViolationKind names the rule that was broken.
type ViolationKind string

const (
	ViolationAvailableWhileOpen  ViolationKind = "available_while_open"
	ViolationUnavailableNoOpen   ViolationKind = "unavailable_without_open_assignment"
	ViolationMultipleOpen        ViolationKind = "multiple_open_assignments"
	ViolationDanglingKey         ViolationKind = "dangling_key_reference"
	ViolationDanglingUser        ViolationKind = "dangling_user_reference"
	ViolationReturnBeforeAssign  ViolationKind = "returned_before_assigned"
)

// Violation is a single inconsistency found by a ledger check.
type Violation struct {
	Kind           ViolationKind
	Classification ViolationClassification
	KeyID          string
	UserID         string
	AssignmentIDs  []string
}

// IsCritical returns true if the violation breaks the custody invariant.
func (v Violation) IsCritical() bool {
	return v.Classification == ViolationCritical
}

// String returns a one-line description.
func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", v.Classification, v.Kind)
	if v.KeyID != "" {
		fmt.Fprintf(&b, " key=%s", v.KeyID)
	}
	if v.UserID != "" {
		fmt.Fprintf(&b, " user=%s", v.UserID)
	}
	if len(v.AssignmentIDs) > 0 {
		fmt.Fprintf(&b, " assignments=%s", strings.Join(v.AssignmentIDs, ","))
	}
	return b.String()
}
