// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
)

// historyModel shows every assignment, newest first, in a scrollable
// viewport. Tab toggles between all and open assignments.
type historyModel struct {
	ledger     *ledger.Ledger
	activeOnly bool
	viewport   viewport.Model
}

func newHistoryModel(l *ledger.Ledger, width, height int) *historyModel {
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 24
	}
	m := &historyModel{ledger: l, viewport: viewport.New(width-4, height-8)}
	m.refresh()
	return m
}

func (m *historyModel) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoTop()
}

// render builds the table shown in the viewport.
func (m *historyModel) render() string {
	items := m.ledger.History(ledger.HistoryFilter{ActiveOnly: m.activeOnly})
	if len(items) == 0 {
		return helpStyle.Render(i18n.T("history.empty"))
	}
	var b strings.Builder
	for _, a := range items {
		returned := i18n.T("history.still_out")
		if a.ReturnedAt != nil {
			returned = a.ReturnedAt.Local().Format(timeLayout)
		}
		line := fmt.Sprintf("%-24s %-24s %s -> %s", m.ledger.KeyName(a.KeyID), m.ledger.UserName(a.UserID),
			a.AssignedAt.Local().Format(timeLayout), returned)
		if a.Notes != "" {
			line += "  " + a.Notes
		}
		if a.IsActive() {
			b.WriteString(specialStyle.Render(line))
		} else {
			b.WriteString(inactiveItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *historyModel) Init() tea.Cmd { return nil }

func (m *historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, backToMenu
		case "tab":
			m.activeOnly = !m.activeOnly
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *historyModel) View() string {
	title := i18n.T("history.title")
	if m.activeOnly {
		title = i18n.T("history.title_active")
	}
	return titleStyle.Render(title) + "\n" + m.viewport.View() + "\n" + helpStyle.Render(i18n.T("history.help"))
}
