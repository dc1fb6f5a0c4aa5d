// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/model"
)

// activeModel lists the keys that are currently out. Enter takes the
// selected key back; y copies its barcode.
type activeModel struct {
	ctx    context.Context
	ledger *ledger.Ledger
	now    func() time.Time

	items  []model.Assignment
	cursor int
	status string
	err    string
}

func newActiveModel(ctx context.Context, l *ledger.Ledger) *activeModel {
	m := &activeModel{ctx: ctx, ledger: l, now: time.Now}
	m.reload()
	return m
}

func (m *activeModel) reload() {
	m.items = m.ledger.ActiveAssignments()
	m.cursor = clampCursor(m.cursor, len(m.items))
}

func (m *activeModel) Init() tea.Cmd { return nil }

func (m *activeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "esc", "q":
		return m, backToMenu
	case "enter", "r":
		if len(m.items) == 0 {
			return m, nil
		}
		ctx, cancel := withTimeout(m.ctx)
		defer cancel()
		a, err := m.ledger.ReturnKey(ctx, m.items[m.cursor].ID)
		if err != nil {
			m.err = errorText(err)
			return m, nil
		}
		m.err = ""
		m.status = i18n.T("return.success", m.ledger.KeyName(a.KeyID), m.ledger.UserName(a.UserID))
		m.reload()
	case "y":
		if len(m.items) == 0 {
			return m, nil
		}
		k, found := m.ledger.Key(m.items[m.cursor].KeyID)
		if !found {
			m.err = i18n.T("placeholder.unknown_key")
			return m, nil
		}
		if err := copyToClipboard(k.Barcode); err != nil {
			m.err = i18n.T("active.copy_failed", err)
			return m, nil
		}
		m.err = ""
		m.status = i18n.T("active.copied", k.Barcode)
	default:
		m.cursor = moveCursor(km.String(), m.cursor, len(m.items))
	}
	return m, nil
}

func (m *activeModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("active.title")))
	b.WriteString("\n")
	if len(m.items) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("active.empty")) + "\n")
	}
	now := m.now()
	for i, a := range m.items {
		line := fmt.Sprintf("%-24s %-24s %s (%s)",
			m.ledger.KeyName(a.KeyID), m.ledger.UserName(a.UserID),
			a.AssignedAt.Local().Format(timeLayout), a.Duration(now).Round(time.Minute))
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
		if i == m.cursor && a.Notes != "" {
			b.WriteString(helpStyle.Render("    "+a.Notes) + "\n")
		}
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("active.help")))
	return b.String()
}
