// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
)

// formField describes one text input of a formModel.
type formField struct {
	label       string
	placeholder string
	value       string
	required    bool
	password    bool
}

// formResult tells the owning view what a key press did to the form.
type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

// formModel is a vertical stack of text inputs. Tab and the arrow keys move
// between fields, enter on the last field submits and esc cancels.
type formModel struct {
	title    string
	fields   []formField
	inputs   []textinput.Model
	focus    int
	err      string
	labelPad int
}

func newFormModel(title string, fields []formField) formModel {
	m := formModel{title: title, fields: fields, inputs: make([]textinput.Model, len(fields))}
	for _, f := range fields {
		if w := len([]rune(f.label)); w > m.labelPad {
			m.labelPad = w
		}
	}
	for i, f := range fields {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 128
		t.Width = 40
		t.Prompt = f.label + ": " + strings.Repeat(" ", m.labelPad-len([]rune(f.label)))
		t.Placeholder = f.placeholder
		t.SetValue(f.value)
		if f.password {
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
		m.inputs[0].PromptStyle = focusedStyle
	}
	return m
}

// values returns the trimmed field values in order.
func (m formModel) values() []string {
	out := make([]string, len(m.inputs))
	for i := range m.inputs {
		out[i] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

func (m *formModel) setFocus(i int) tea.Cmd {
	if i < 0 {
		i = len(m.inputs) - 1
	}
	if i >= len(m.inputs) {
		i = 0
	}
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			m.inputs[j].PromptStyle = focusedStyle
			continue
		}
		m.inputs[j].Blur()
		m.inputs[j].PromptStyle = itemStyle
	}
	return cmd
}

// missingRequired returns the label of the first empty required field.
func (m formModel) missingRequired() (string, bool) {
	vals := m.values()
	for i, f := range m.fields {
		if f.required && vals[i] == "" {
			return f.label, true
		}
	}
	return "", false
}

func (m *formModel) update(msg tea.Msg) (formResult, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			return formCancelled, nil
		case "tab", "down":
			return formEditing, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return formEditing, m.setFocus(m.focus - 1)
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return formEditing, m.setFocus(m.focus + 1)
			}
			if label, missing := m.missingRequired(); missing {
				m.err = i18n.T("form.error_required", label)
				return formEditing, nil
			}
			m.err = ""
			return formSubmitted, nil
		}
	}
	var cmd tea.Cmd
	if len(m.inputs) > 0 {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return formEditing, cmd
}

func (m formModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("form.help")))
	return b.String()
}
