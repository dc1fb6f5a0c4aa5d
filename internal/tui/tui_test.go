// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/session"
	"github.com/toeirei/keyledger/internal/testutil"
)

func TestMain(m *testing.M) {
	i18n.Init("en")
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	ledger *ledger.Ledger
	gate   *session.Gate
	model  tea.Model
}

// newHarness builds a TUI over a seeded in-memory ledger. When loggedIn is
// set the gate starts authenticated and the model opens on the menu.
func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	ctx := context.Background()
	tl := testutil.NewLedger(t)
	l := tl.Ledger
	cred, err := session.DefaultCredential()
	if err != nil {
		t.Fatalf("DefaultCredential failed: %v", err)
	}
	g := session.NewGate(tl.Store, cred)
	if loggedIn {
		if ok, err := g.Login(ctx, "admin", "admin"); !ok || err != nil {
			t.Fatalf("Login failed: %v %v", ok, err)
		}
	}
	return &harness{t: t, ledger: l, gate: g, model: newMainModel(ctx, l, g)}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key in turn and returns the command of the last one.
func (h *harness) press(keys ...string) tea.Cmd {
	h.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		h.model, cmd = h.model.Update(keyMsg(k))
	}
	return cmd
}

// follow runs cmd and feeds its message back into the model. Only use it for
// commands that return immediately.
func (h *harness) follow(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		h.t.Fatalf("expected a command")
	}
	h.model, _ = h.model.Update(cmd())
}

func (h *harness) main() mainModel {
	return h.model.(mainModel)
}

func TestStartsOnLoginWhenAnonymous(t *testing.T) {
	h := newHarness(t, false)
	if h.main().state != loginView {
		t.Fatalf("expected login view, got %v", h.main().state)
	}
	if !strings.Contains(h.model.View(), i18n.T("login.title")) {
		t.Fatalf("login view missing title:\n%s", h.model.View())
	}
}

func TestLoginSuccess(t *testing.T) {
	h := newHarness(t, false)
	h.press("admin", "enter", "admin")
	h.follow(h.press("enter"))
	if h.main().state != menuView {
		t.Fatalf("expected menu after login, got %v", h.main().state)
	}
	if !h.gate.IsAuthenticated() {
		t.Fatalf("gate should be authenticated")
	}
	if !strings.Contains(h.model.View(), "Keys: 2") {
		t.Fatalf("dashboard should show seeded key count:\n%s", h.model.View())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, false)
	h.press("admin", "enter", "wrong")
	if cmd := h.press("enter"); cmd != nil {
		t.Fatalf("expected no command for a rejected login")
	}
	if h.main().state != loginView {
		t.Fatalf("should stay on the login view")
	}
	if !strings.Contains(h.model.View(), i18n.T("login.invalid_credentials")) {
		t.Fatalf("expected invalid credentials message:\n%s", h.model.View())
	}
}

func TestScanAssignAndReturn(t *testing.T) {
	h := newHarness(t, true)
	h.press("s")
	if h.main().state != scanView {
		t.Fatalf("expected scan view, got %v", h.main().state)
	}

	h.press("123456789", "enter")
	if h.main().scan.stage != stagePickUser {
		t.Fatalf("expected employee picker, got stage %v", h.main().scan.stage)
	}
	h.press("down", "enter", "night shift", "enter")

	active := h.ledger.ActiveAssignments()
	if len(active) != 1 {
		t.Fatalf("expected one active assignment, got %d", len(active))
	}
	if active[0].KeyID != "1" || active[0].UserID != "2" || active[0].Notes != "night shift" {
		t.Fatalf("unexpected assignment: %+v", active[0])
	}
	if h.main().scan.stage != stageBarcode {
		t.Fatalf("scan view should reset after assigning")
	}

	// Scanning the issued key offers to take it back.
	h.press("123456789", "enter")
	if h.main().scan.stage != stageIssued {
		t.Fatalf("expected issued stage, got %v", h.main().scan.stage)
	}
	if !strings.Contains(h.model.View(), i18n.T("scan.already_issued")) {
		t.Fatalf("issued key should show the alert:\n%s", h.model.View())
	}
	h.press("r")
	if n := len(h.ledger.ActiveAssignments()); n != 0 {
		t.Fatalf("expected key to be returned, %d still active", n)
	}
	if k, _ := h.ledger.Key("1"); !k.IsAvailable {
		t.Fatalf("key should be available again")
	}
}

func TestScanUnknownBarcode(t *testing.T) {
	h := newHarness(t, true)
	h.press("s", "000", "enter")
	if h.main().scan.stage != stageBarcode {
		t.Fatalf("unknown barcode should stay on the prompt")
	}
	if !strings.Contains(h.model.View(), i18n.T("scan.not_found")) {
		t.Fatalf("expected not found alert:\n%s", h.model.View())
	}
}

func TestEscReturnsToMenu(t *testing.T) {
	h := newHarness(t, true)
	h.press("s")
	h.follow(h.press("esc"))
	if h.main().state != menuView {
		t.Fatalf("expected menu, got %v", h.main().state)
	}
}

func TestActiveViewCopyAndReturn(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.ledger.AssignKey(context.Background(), "2", "1", ""); err != nil {
		t.Fatalf("AssignKey failed: %v", err)
	}

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	h.press("down", "enter")
	if h.main().state != activeView {
		t.Fatalf("expected active view, got %v", h.main().state)
	}
	if !strings.Contains(h.model.View(), "Склад А") {
		t.Fatalf("active view should list the issued key:\n%s", h.model.View())
	}

	h.press("y")
	if copied != "987654321" {
		t.Fatalf("expected barcode to be copied, got %q", copied)
	}

	h.press("enter")
	if n := len(h.ledger.ActiveAssignments()); n != 0 {
		t.Fatalf("expected assignment to be closed, %d still active", n)
	}
	if !strings.Contains(h.model.View(), i18n.T("active.empty")) {
		t.Fatalf("active list should be empty:\n%s", h.model.View())
	}
}

func TestKeysAdminAddAndDelete(t *testing.T) {
	h := newHarness(t, true)
	h.press("down", "down", "down", "enter")
	if h.main().state != keysView {
		t.Fatalf("expected keys view, got %v", h.main().state)
	}

	h.press("a", "555", "enter", "Server Room", "enter", "enter", "Basement", "enter")
	k, ok := h.ledger.KeyByBarcode("555")
	if !ok {
		t.Fatalf("key was not added")
	}
	if k.Name != "Server Room" || k.Location != "Basement" || !k.IsAvailable {
		t.Fatalf("unexpected key: %+v", k)
	}

	h.press("G", "d", "y")
	if _, ok := h.ledger.KeyByBarcode("555"); ok {
		t.Fatalf("key should be deleted")
	}
}

func TestKeysAdminRequiresFields(t *testing.T) {
	h := newHarness(t, true)
	h.press("down", "down", "down", "enter")
	h.press("a", "enter", "enter", "enter", "enter")
	if h.main().keys.mode != modeForm {
		t.Fatalf("form should stay open when required fields are empty")
	}
	if len(h.ledger.Keys()) != 2 {
		t.Fatalf("no key should have been added")
	}
}

func TestKeysAdminRefusesDeletingIssuedKey(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.ledger.AssignKey(context.Background(), "1", "1", ""); err != nil {
		t.Fatalf("AssignKey failed: %v", err)
	}
	h.press("down", "down", "down", "enter", "d", "y")
	if _, ok := h.ledger.Key("1"); !ok {
		t.Fatalf("issued key must not be deleted")
	}
	if !strings.Contains(h.model.View(), "Офис 101") {
		t.Fatalf("expected error naming the key:\n%s", h.model.View())
	}
}

func TestUsersAdminEdit(t *testing.T) {
	h := newHarness(t, true)
	h.press("down", "down", "down", "down", "enter")
	if h.main().state != usersView {
		t.Fatalf("expected users view, got %v", h.main().state)
	}
	// Edit the first employee: skip the name, replace the department.
	h.press("e", "enter", "enter")
	h.model, _ = h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	h.press("Security", "enter")
	u, _ := h.ledger.User("1")
	if u.Department != "Security" || u.Name != "Иван Петров" {
		t.Fatalf("unexpected user after edit: %+v", u)
	}
}

func TestLanguageSwitch(t *testing.T) {
	t.Cleanup(func() { i18n.Init("en") })
	h := newHarness(t, true)
	h.press("down", "down", "down", "down", "down", "enter")
	if h.main().state != languageView {
		t.Fatalf("expected language view, got %v", h.main().state)
	}
	h.follow(h.press("down", "enter"))
	if i18n.GetLang() != "ru" {
		t.Fatalf("expected ru, got %s", i18n.GetLang())
	}
	if h.main().state != menuView {
		t.Fatalf("language switch should land on the menu")
	}
	if !strings.Contains(h.model.View(), i18n.T("menu.scan")) {
		t.Fatalf("menu should be re-rendered in Russian:\n%s", h.model.View())
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)
	h.press("G", "up", "enter")
	if h.main().state != loginView {
		t.Fatalf("expected login view after logout, got %v", h.main().state)
	}
	if h.gate.IsAuthenticated() {
		t.Fatalf("gate should be anonymous after logout")
	}
}

func TestAlignFooter(t *testing.T) {
	got := AlignFooter("left", "right", 15)
	if got != "left      right" {
		t.Fatalf("unexpected footer %q", got)
	}
	if got := AlignFooter("left", "right", 3); got != "left right" {
		t.Fatalf("narrow footer should use one space, got %q", got)
	}
}

func TestHistoryViewShowsAssignments(t *testing.T) {
	h := newHarness(t, true)
	a, err := h.ledger.AssignKey(context.Background(), "1", "2", "audit")
	if err != nil {
		t.Fatalf("AssignKey failed: %v", err)
	}
	if _, err := h.ledger.ReturnKey(context.Background(), a.ID); err != nil {
		t.Fatalf("ReturnKey failed: %v", err)
	}
	h.press("down", "down", "enter")
	if h.main().state != historyView {
		t.Fatalf("expected history view, got %v", h.main().state)
	}
	view := h.model.View()
	for _, want := range []string{"Офис 101", "Мария Смирнова", "audit"} {
		if !strings.Contains(view, want) {
			t.Errorf("history view missing %q:\n%s", want, view)
		}
	}

	// Only open assignments: the returned one disappears.
	h.press("tab")
	if !strings.Contains(h.model.View(), i18n.T("history.empty")) {
		t.Fatalf("expected empty open-only history:\n%s", h.model.View())
	}
}
