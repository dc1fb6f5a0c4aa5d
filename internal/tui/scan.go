// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/model"
)

// scanStage is the step of the scan-and-assign flow.
type scanStage int

const (
	stageBarcode scanStage = iota
	stagePickUser
	stageNotes
	stageIssued
)

// scanModel drives barcode -> key card -> employee -> notes -> assign. A key
// that is already out shows who holds it and can be taken back instead.
type scanModel struct {
	ctx    context.Context
	ledger *ledger.Ledger

	stage   scanStage
	barcode textinput.Model
	notes   textinput.Model
	key     model.Key
	users   []model.User
	cursor  int
	open    model.Assignment
	err     string
	status  string
}

func newScanModel(ctx context.Context, l *ledger.Ledger) *scanModel {
	m := &scanModel{ctx: ctx, ledger: l}
	m.barcode = textinput.New()
	m.barcode.Prompt = i18n.T("scan.prompt") + " "
	m.barcode.Placeholder = "123456789"
	m.barcode.CharLimit = 64
	m.barcode.Width = 32
	m.barcode.Cursor.Style = focusedStyle
	m.barcode.Focus()

	m.notes = textinput.New()
	m.notes.Prompt = i18n.T("scan.notes_prompt") + " "
	m.notes.CharLimit = 256
	m.notes.Width = 48
	m.notes.Cursor.Style = focusedStyle
	return m
}

func (m *scanModel) Init() tea.Cmd {
	return textinput.Blink
}

// reset returns to an empty barcode prompt, keeping the status line.
func (m *scanModel) reset() tea.Cmd {
	m.stage = stageBarcode
	m.key = model.Key{}
	m.open = model.Assignment{}
	m.cursor = 0
	m.err = ""
	m.barcode.SetValue("")
	m.notes.SetValue("")
	m.notes.Blur()
	return m.barcode.Focus()
}

func (m *scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, isKey := msg.(tea.KeyMsg)
	switch m.stage {
	case stageBarcode:
		if isKey {
			switch km.String() {
			case "esc":
				return m, backToMenu
			case "enter":
				m.lookup()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.barcode, cmd = m.barcode.Update(msg)
		return m, cmd

	case stagePickUser:
		if !isKey {
			return m, nil
		}
		switch km.String() {
		case "esc":
			return m, m.reset()
		case "enter":
			if len(m.users) == 0 {
				return m, nil
			}
			m.stage = stageNotes
			return m, m.notes.Focus()
		default:
			m.cursor = moveCursor(km.String(), m.cursor, len(m.users))
		}
		return m, nil

	case stageNotes:
		if isKey {
			switch km.String() {
			case "esc":
				m.notes.Blur()
				m.stage = stagePickUser
				return m, nil
			case "enter":
				return m, m.assign()
			}
		}
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd

	case stageIssued:
		if !isKey {
			return m, nil
		}
		switch km.String() {
		case "esc", "n":
			return m, m.reset()
		case "enter", "r", "y":
			return m, m.giveBack()
		}
	}
	return m, nil
}

// lookup resolves the typed barcode and moves to the next stage.
func (m *scanModel) lookup() {
	code := strings.TrimSpace(m.barcode.Value())
	m.status = ""
	if code == "" {
		return
	}
	k, ok := m.ledger.KeyByBarcode(code)
	if !ok {
		m.err = i18n.T("scan.not_found")
		m.barcode.SetValue("")
		return
	}
	m.err = ""
	m.key = k
	m.barcode.Blur()
	if open, out := m.ledger.OpenAssignmentForKey(k.ID); out {
		m.open = open
		m.stage = stageIssued
		return
	}
	m.users = m.ledger.Users()
	m.cursor = 0
	m.stage = stagePickUser
}

func (m *scanModel) assign() tea.Cmd {
	u := m.users[m.cursor]
	ctx, cancel := withTimeout(m.ctx)
	defer cancel()
	if _, err := m.ledger.AssignKey(ctx, m.key.ID, u.ID, strings.TrimSpace(m.notes.Value())); err != nil {
		m.err = errorText(err)
		return nil
	}
	m.status = i18n.T("assign.success_short", m.key.Name, u.Name)
	return m.reset()
}

func (m *scanModel) giveBack() tea.Cmd {
	ctx, cancel := withTimeout(m.ctx)
	defer cancel()
	a, err := m.ledger.ReturnKey(ctx, m.open.ID)
	if err != nil {
		m.err = errorText(err)
		return nil
	}
	m.status = i18n.T("return.success", m.ledger.KeyName(a.KeyID), m.ledger.UserName(a.UserID))
	return m.reset()
}

func (m *scanModel) keyCard() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.key.Name)
	fmt.Fprintf(&b, "%s: %s\n", i18n.T("key.barcode"), m.key.Barcode)
	if m.key.Description != "" {
		fmt.Fprintf(&b, "%s\n", m.key.Description)
	}
	if m.key.Location != "" {
		fmt.Fprintf(&b, "%s: %s\n", i18n.T("key.location"), m.key.Location)
	}
	if m.stage == stageIssued {
		b.WriteString(specialStyle.Render(i18n.T("key.status_assigned")))
	} else {
		b.WriteString(successStyle.Render(i18n.T("key.status_available")))
	}
	return cardStyle.Render(b.String())
}

func (m *scanModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("scan.title")))
	b.WriteString("\n")

	switch m.stage {
	case stageBarcode:
		b.WriteString(m.barcode.View())
		b.WriteString("\n")
	case stagePickUser:
		b.WriteString(m.keyCard())
		b.WriteString("\n\n" + i18n.T("scan.pick_user") + "\n")
		if len(m.users) == 0 {
			b.WriteString(helpStyle.Render(i18n.T("user.list_empty")) + "\n")
		}
		for i, u := range m.users {
			line := u.String()
			if u.Department != "" {
				line += " - " + u.Department
			}
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("▸ " + line))
			} else {
				b.WriteString(itemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	case stageNotes:
		b.WriteString(m.keyCard())
		b.WriteString("\n\n" + i18n.T("scan.assign_to", m.users[m.cursor].Name) + "\n")
		b.WriteString(m.notes.View() + "\n")
	case stageIssued:
		b.WriteString(m.keyCard())
		b.WriteString("\n\n")
		msg := i18n.T("scan.already_issued") + "\n" +
			i18n.T("key.held_by", m.ledger.UserName(m.open.UserID), m.open.AssignedAt.Local().Format(timeLayout)) + "\n\n" +
			i18n.T("scan.return_question")
		b.WriteString(dialogBoxStyle.Render(msg))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T(scanHelp[m.stage])))
	return b.String()
}

var scanHelp = map[scanStage]string{
	stageBarcode:  "scan.help_barcode",
	stagePickUser: "scan.help_pick",
	stageNotes:    "scan.help_notes",
	stageIssued:   "scan.help_issued",
}
