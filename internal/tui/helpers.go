// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
)

// opTimeout bounds a single ledger mutation issued from the UI.
const opTimeout = 10 * time.Second

const timeLayout = "2006-01-02 15:04"

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// errorText maps ledger errors to translated messages.
func errorText(err error) string {
	switch {
	case errors.Is(err, ledger.ErrConflict):
		return i18n.T("scan.already_issued")
	case errors.Is(err, ledger.ErrNotFound):
		return i18n.T("tui.error_not_found")
	default:
		return i18n.T("tui.error_generic", err)
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// moveCursor handles the shared up/down bindings of the list views.
func moveCursor(key string, cursor, n int) int {
	switch key {
	case "up", "k":
		cursor--
	case "down", "j":
		cursor++
	case "home", "g":
		cursor = 0
	case "end", "G":
		cursor = n - 1
	}
	return clampCursor(cursor, n)
}
