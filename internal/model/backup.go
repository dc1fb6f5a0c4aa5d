// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// BackupSchemaVersion is written into every backup.
const BackupSchemaVersion = 1

// BackupData is a container for all ledger data exported for a backup.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int       `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`

	Keys        []Key        `json:"keys"`
	Users       []User       `json:"users"`
	Assignments []Assignment `json:"assignments"`
}
