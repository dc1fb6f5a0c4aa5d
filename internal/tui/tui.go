// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Keyledger.
// This file, tui.go, is the main entry point for the TUI, containing the
// top-level model that acts as a router to all other sub-views.
package tui // import "github.com/toeirei/keyledger/internal/tui"

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/session"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	loginView viewState = iota
	// menuView is the main dashboard and navigation menu.
	menuView
	scanView
	activeView
	historyView
	keysView
	usersView
	languageView
)

// backToMenuMsg is sent by a sub-view when the user leaves it.
type backToMenuMsg struct{}

func backToMenu() tea.Msg { return backToMenuMsg{} }

// languageChangedMsg is a message to signal that the language has changed and the UI should be re-initialized.
type languageChangedMsg struct{}

// menuItem pairs a translated label with the view it opens.
type menuItem struct {
	label  string
	target viewState
	action func(m *mainModel) tea.Cmd
}

type menuModel struct {
	items  []menuItem
	cursor int
}

// languageModel holds the state for the language selection menu.
type languageModel struct {
	choices     map[string]string // map of lang code to display name
	orderedKeys []string          // for stable iteration
	cursor      int
}

// mainModel is the top-level model for the TUI. It acts as a state machine
// and router, delegating updates and view rendering to the active sub-model.
type mainModel struct {
	ctx    context.Context
	ledger *ledger.Ledger
	gate   *session.Gate

	state    viewState
	login    *loginModel
	menu     menuModel
	scan     *scanModel
	active   *activeModel
	history  *historyModel
	keys     *keysModel
	users    *usersModel
	language languageModel
	stats    ledger.Stats

	width  int
	height int
	err    error
}

func newMainModel(ctx context.Context, l *ledger.Ledger, g *session.Gate) mainModel {
	m := mainModel{
		ctx:    ctx,
		ledger: l,
		gate:   g,
		state:  loginView,
		menu:   newMenuModel(),
	}
	m.language = newLanguageModel()
	if g.IsAuthenticated() {
		m.state = menuView
		m.stats = l.Stats()
	} else {
		m.login = newLoginModel(ctx, g)
	}
	return m
}

func newMenuModel() menuModel {
	return menuModel{items: []menuItem{
		{label: i18n.T("menu.scan"), target: scanView},
		{label: i18n.T("menu.active"), target: activeView},
		{label: i18n.T("menu.history"), target: historyView},
		{label: i18n.T("menu.keys"), target: keysView},
		{label: i18n.T("menu.users"), target: usersView},
		{label: i18n.T("menu.language"), target: languageView},
		{label: i18n.T("menu.logout"), action: (*mainModel).logout},
		{label: i18n.T("menu.quit"), action: func(*mainModel) tea.Cmd { return tea.Quit }},
	}}
}

func newLanguageModel() languageModel {
	choices := i18n.GetAvailableLocales()
	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cursor := 0
	for i, k := range keys {
		if k == i18n.GetLang() {
			cursor = i
		}
	}
	return languageModel{choices: choices, orderedKeys: keys, cursor: cursor}
}

// Init is the first function that will be called by the Bubble Tea runtime.
func (m mainModel) Init() tea.Cmd {
	return nil
}

func (m *mainModel) logout() tea.Cmd {
	ctx, cancel := withTimeout(m.ctx)
	defer cancel()
	if err := m.gate.Logout(ctx); err != nil {
		m.err = err
		return nil
	}
	m.state = loginView
	m.login = newLoginModel(m.ctx, m.gate)
	m.menu.cursor = 0
	return nil
}

// open switches to target, building a fresh sub-model so every view starts
// from the current ledger state.
func (m *mainModel) open(target viewState) tea.Cmd {
	m.state = target
	switch target {
	case scanView:
		m.scan = newScanModel(m.ctx, m.ledger)
		return m.scan.Init()
	case activeView:
		m.active = newActiveModel(m.ctx, m.ledger)
	case historyView:
		m.history = newHistoryModel(m.ledger, m.width, m.height)
	case keysView:
		m.keys = newKeysModel(m.ctx, m.ledger)
	case usersView:
		m.users = newUsersModel(m.ctx, m.ledger)
	case languageView:
		m.language = newLanguageModel()
	}
	return nil
}

// Update is the main message loop. It handles global events and delegates
// everything else to the active sub-model.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case loggedInMsg:
		m.state = menuView
		m.login = nil
		m.stats = m.ledger.Stats()
		return m, nil
	case backToMenuMsg:
		m.state = menuView
		m.stats = m.ledger.Stats()
		return m, nil
	case languageChangedMsg:
		// Rebuild every translated label. The session is untouched.
		fresh := newMainModel(m.ctx, m.ledger, m.gate)
		fresh.width = m.width
		fresh.height = m.height
		return fresh, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case loginView:
		cmd = m.login.Update(msg)
	case menuView:
		cmd = m.updateMenu(msg)
	case scanView:
		_, cmd = m.scan.Update(msg)
	case activeView:
		_, cmd = m.active.Update(msg)
	case historyView:
		_, cmd = m.history.Update(msg)
	case keysView:
		_, cmd = m.keys.Update(msg)
	case usersView:
		_, cmd = m.users.Update(msg)
	case languageView:
		cmd = m.updateLanguage(msg)
	}
	return m, cmd
}

func (m *mainModel) updateMenu(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "q":
		return tea.Quit
	case "enter":
		item := m.menu.items[m.menu.cursor]
		if item.action != nil {
			return item.action(m)
		}
		return m.open(item.target)
	case "s":
		// Shortcut for the scanner workflow.
		return m.open(scanView)
	default:
		m.menu.cursor = moveCursor(km.String(), m.menu.cursor, len(m.menu.items))
	}
	return nil
}

func (m *mainModel) updateLanguage(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "esc", "q":
		return backToMenu
	case "enter":
		lang := m.language.orderedKeys[m.language.cursor]
		i18n.SetLang(lang)
		logging.Debugf("tui: language switched to %s", lang)
		return func() tea.Msg { return languageChangedMsg{} }
	default:
		m.language.cursor = moveCursor(km.String(), m.language.cursor, len(m.language.orderedKeys))
	}
	return nil
}

// View renders the active view inside the shared document margins.
func (m mainModel) View() string {
	var body string
	switch m.state {
	case loginView:
		body = m.login.View()
	case menuView:
		body = m.menuView()
	case scanView:
		body = m.scan.View()
	case activeView:
		body = m.active.View()
	case historyView:
		body = m.history.View()
	case keysView:
		body = m.keys.View()
	case usersView:
		body = m.users.View()
	case languageView:
		body = m.languageView()
	}
	return docStyle.Render(body)
}

func (m mainModel) menuView() string {
	var b strings.Builder
	b.WriteString(mainTitleStyle.Render(i18n.T("menu.title")))
	b.WriteString("\n")

	var menu strings.Builder
	for i, item := range m.menu.items {
		if i == m.menu.cursor {
			menu.WriteString(selectedItemStyle.Render("▸ " + item.label))
		} else {
			menu.WriteString(itemStyle.Render("  " + item.label))
		}
		menu.WriteString("\n")
	}

	s := m.stats
	dash := strings.Join([]string{
		i18n.T("dashboard.keys_total", s.Keys),
		successStyle.Render(i18n.T("dashboard.keys_available", s.AvailableKeys)),
		specialStyle.Render(i18n.T("dashboard.keys_assigned", s.AssignedKeys)),
		i18n.T("dashboard.users_total", s.Users),
		i18n.T("dashboard.assignments_total", s.TotalAssignments),
	}, "\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(32).Render(menu.String()),
		cardStyle.Width(32).Render(dash),
	))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	left := helpStyle.Render(i18n.T("menu.help"))
	right := helpStyle.Render(i18n.T("menu.logged_in_as", m.gate.Current().Login))
	b.WriteString("\n" + AlignFooter(left, right, max(m.width-4, 0)))
	return b.String()
}

func (m mainModel) languageView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("language.title")))
	b.WriteString("\n")
	for i, k := range m.language.orderedKeys {
		line := fmt.Sprintf("%s (%s)", m.language.choices[k], k)
		if i == m.language.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("language.help")))
	return b.String()
}

// Run starts the full-screen TUI and blocks until the user quits.
func Run(ctx context.Context, l *ledger.Ledger, g *session.Gate) error {
	p := tea.NewProgram(newMainModel(ctx, l, g), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
