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

// usersModel is the employee directory: a list with add, edit and delete.
type usersModel struct {
	ctx    context.Context
	ledger *ledger.Ledger

	mode    adminMode
	items   []model.User
	cursor  int
	form    formModel
	editing string
	status  string
	err     string
}

func newUsersModel(ctx context.Context, l *ledger.Ledger) *usersModel {
	m := &usersModel{ctx: ctx, ledger: l}
	m.reload()
	return m
}

func (m *usersModel) reload() {
	m.items = m.ledger.Users()
	m.cursor = clampCursor(m.cursor, len(m.items))
}

func (m *usersModel) openForm(u *model.User) {
	var in model.UserInput
	title := i18n.T("users.add_title")
	m.editing = ""
	if u != nil {
		in = model.UserInput{Name: u.Name, Email: u.Email, Department: u.Department}
		title = i18n.T("users.edit_title")
		m.editing = u.ID
	}
	m.form = newFormModel(title, []formField{
		{label: i18n.T("user.name"), value: in.Name, required: true},
		{label: i18n.T("user.email"), placeholder: "name@company.com", value: in.Email},
		{label: i18n.T("user.department"), value: in.Department},
	})
	m.mode = modeForm
	m.err = ""
}

func (m *usersModel) submit() {
	v := m.form.values()
	in := model.UserInput{Name: v[0], Email: v[1], Department: v[2]}
	ctx, cancel := withTimeout(m.ctx)
	defer cancel()
	var err error
	if m.editing == "" {
		_, err = m.ledger.AddUser(ctx, in)
	} else {
		_, err = m.ledger.UpdateUser(ctx, m.editing, in)
	}
	if err != nil {
		m.form.err = errorText(err)
		return
	}
	m.status = i18n.T("users.saved", in.Name)
	m.mode = modeList
	m.reload()
}

func (m *usersModel) Init() tea.Cmd { return nil }

func (m *usersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			u := m.items[m.cursor]
			ctx, cancel := withTimeout(m.ctx)
			defer cancel()
			if err := m.ledger.DeleteUser(ctx, u.ID); err != nil {
				m.err = i18n.T("user.error_delete_holding", u.Name)
			} else {
				m.err = ""
				m.status = i18n.T("user.deleted", u.Name)
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
			u := m.items[m.cursor]
			m.openForm(&u)
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

func (m *usersModel) View() string {
	if m.mode == modeForm {
		return m.form.view()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("users.title")))
	b.WriteString("\n")
	if len(m.items) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("user.list_empty")) + "\n")
	}
	for i, u := range m.items {
		line := fmt.Sprintf("%-28s %-28s %s", u.Name, u.Email, u.Department)
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if m.mode == modeConfirmDelete {
		b.WriteString("\n" + dialogBoxStyle.Render(i18n.T("users.confirm_delete", m.items[m.cursor].Name)) + "\n")
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
