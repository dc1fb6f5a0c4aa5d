// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/session"
)

// loggedInMsg is sent after the gate accepted the credentials.
type loggedInMsg struct{}

// loginModel is the only screen reachable without a session.
type loginModel struct {
	ctx  context.Context
	gate *session.Gate
	form formModel
}

func newLoginModel(ctx context.Context, gate *session.Gate) *loginModel {
	return &loginModel{
		ctx:  ctx,
		gate: gate,
		form: newFormModel(i18n.T("login.title"), []formField{
			{label: i18n.T("login.username"), placeholder: session.DefaultLogin, required: true},
			{label: i18n.T("login.password"), required: true, password: true},
		}),
	}
}

func (m *loginModel) Update(msg tea.Msg) tea.Cmd {
	res, cmd := m.form.update(msg)
	switch res {
	case formCancelled:
		return tea.Quit
	case formSubmitted:
		vals := m.form.values()
		ctx, cancel := withTimeout(m.ctx)
		defer cancel()
		ok, err := m.gate.Login(ctx, vals[0], m.form.inputs[1].Value())
		if err != nil {
			// The session is active but could not be saved for the next start.
			m.form.err = errorText(err)
		}
		if !ok {
			m.form.err = i18n.T("login.invalid_credentials")
			m.form.inputs[1].SetValue("")
			return nil
		}
		return func() tea.Msg { return loggedInMsg{} }
	}
	return cmd
}

func (m *loginModel) View() string {
	return m.form.view()
}
