// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

import "runtime/debug"

// Set at link time via
// `-ldflags "-X github.com/toeirei/keyledger/buildvars.Version=..."`.
// They are empty for local or development builds.
var (
	Version   string
	Commit    string
	BuildDate string
)

// VersionOrDefault returns Version if set, otherwise the module version from
// the embedded build info, otherwise def.
func VersionOrDefault(def string) string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return def
}

// CommitOrDefault returns Commit if set, otherwise the VCS revision recorded
// by the Go toolchain, otherwise def.
func CommitOrDefault(def string) string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return def
}
