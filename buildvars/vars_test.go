// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package buildvars

import "testing"

func TestVersionOrDefault_PrefersInjectedValue(t *testing.T) {
	prev := Version
	t.Cleanup(func() { Version = prev })

	Version = "1.2.3"
	if got := VersionOrDefault("dev"); got != "1.2.3" {
		t.Fatalf("VersionOrDefault = %q, want 1.2.3", got)
	}
}

func TestCommitOrDefault_PrefersInjectedValue(t *testing.T) {
	prev := Commit
	t.Cleanup(func() { Commit = prev })

	Commit = "abc123"
	if got := CommitOrDefault("dev"); got != "abc123" {
		t.Fatalf("CommitOrDefault = %q, want abc123", got)
	}
}
