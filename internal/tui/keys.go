// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/model"
)

// adminMode is shared by the keys and employees admin views.
type adminMode int

const (
	modeList adminMode = iota
	modeForm
	modeConfirmDelete
)

// keysModel is the key catalog: a list with add, edit and delete.
type keysModel struct {
	ctx    context.Context
	ledger *ledger.Ledger

	mode    adminMode
	items   []model.Key
	cursor  int
	form    formModel
	editing string // id of the key being edited, empty when adding
	status  string
	err     string
}

func newKeysModel(ctx context.Context, l *ledger.Ledger) *keysModel {
	m := &keysModel{ctx: ctx, ledger: l}
	m.reload()
	return m
}

func (m *keysModel) reload() {
	m.items = m.ledger.Keys()
	m.cursor = clampCursor(m.cursor, len(m.items))
}

func (m *keysModel) openForm(k *model.Key) {
	var in model.KeyInput
	title := i18n.T("keys.add_title")
	m.editing = ""
	if k != nil {
		in = model.KeyInput{Barcode: k.Barcode, Name: k.Name, Description: k.Description, Location: k.Location}
		title = i18n.T("keys.edit_title")
		m.editing = k.ID
	}
	m.form = newFormModel(title, []formField{
		{label: i18n.T("key.barcode"), placeholder: "123456789", value: in.Barcode, required: true},
		{label: i18n.T("key.name"), value: in.Name, required: true},
		{label: i18n.T("key.description"), value: in.Description},
		{label: i18n.T("key.location"), value: in.Location},
	})
	m.mode = modeForm
	m.err = ""
}

func (m *keysModel) submit() {
	v := m.form.values()
	in := model.KeyInput{Barcode: v[0], Name: v[1], Description: v[2], Location: v[3]}
	ctx, cancel := withTimeout(m.ctx)
	defer cancel()
	var err error
	if m.editing == "" {
		_, err = m.ledger.AddKey(ctx, in)
	} else {
		_, err = m.ledger.UpdateKey(ctx, m.editing, in)
	}
	if err != nil {
		m.form.err = errorText(err)
		return
	}
	m.status = i18n.T("keys.saved", in.Name)
	m.mode = modeList
	m.reload()
}

func (m *keysModel) Init() tea.Cmd { return nil }

func (m *keysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		res, cmd := m.form.update(msg)
		switch res {
		case formCancelled:
			m.mode = modeList
		case formSubmitted:
			m.submit()
		}
		return m, cmd

	case modeConfirmDelete:
		km, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		if km.String() == "y" {
			k := m.items[m.cursor]
			ctx, cancel := withTimeout(m.ctx)
			defer cancel()
			if err := m.ledger.DeleteKey(ctx, k.ID); err != nil {
				m.err = i18n.T("key.error_delete_assigned", k.Name)
			} else {
				m.err = ""
				m.status = i18n.T("key.deleted", k.Name)
			}
			m.reload()
		}
		m.mode = modeList
		return m, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "esc", "q":
		return m, backToMenu
	case "a":
		m.openForm(nil)
	case "e", "enter":
		if len(m.items) > 0 {
			k := m.items[m.cursor]
			m.openForm(&k)
		}
	case "d", "delete":
		if len(m.items) > 0 {
			m.mode = modeConfirmDelete
		}
	default:
		m.cursor = moveCursor(km.String(), m.cursor, len(m.items))
	}
	return m, nil
}

func (m *keysModel) View() string {
	if m.mode == modeForm {
		return m.form.view()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("keys.title")))
	b.WriteString("\n")
	if len(m.items) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("key.list_empty")) + "\n")
	}
	for i, k := range m.items {
		status := successStyle.Render(i18n.T("key.status_available"))
		if !k.IsAvailable {
			status = specialStyle.Render(i18n.T("key.status_assigned"))
		}
		line := fmt.Sprintf("%-12s %-28s %-20s ", k.Barcode, k.Name, k.Location)
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ "+line) + status)
		} else {
			b.WriteString(itemStyle.Render("  "+line) + status)
		}
		b.WriteString("\n")
	}
	if m.mode == modeConfirmDelete {
		b.WriteString("\n" + dialogBoxStyle.Render(i18n.T("keys.confirm_delete", m.items[m.cursor].Name)) + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("admin.help")))
	return b.String()
}
