// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/keyledger/internal/logging"

func dbLogf(format string, v ...any) {
	logging.Debugf(format, v...)
}
