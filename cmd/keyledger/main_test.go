// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/keyledger/internal/backup"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/model"
)

// cliEnv isolates config lookups and points the store at a temp sqlite file.
type cliEnv struct {
	t   *testing.T
	dsn string
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	logging.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })
	return &cliEnv{t: t, dir: dir, dsn: filepath.Join(dir, "keyledger.db")}
}

// run executes one CLI invocation and returns its stdout.
func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	a := &app{runTUI: func(context.Context, *app) error { return nil }}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	full := append([]string{"--database.type", "sqlite", "--database.dsn", e.dsn, "--language", "en"}, args...)
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\noutput:\n%s", args, err, out)
	}
	return out
}

func (e *cliEnv) login() {
	e.t.Helper()
	e.mustRun("login", "--password", "admin")
}

func TestCommandsRequireLogin(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("", "key", "list")
	if err == nil || !strings.Contains(err.Error(), "log in") {
		t.Fatalf("expected login required error, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newCLIEnv(t)
	if _, err := e.run("", "login", "--password", "nope"); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	out := e.mustRun("whoami")
	if !strings.Contains(out, "Not logged in") {
		t.Fatalf("unexpected whoami output: %q", out)
	}
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	e := newCLIEnv(t)
	if _, err := e.run("admin\n", "login"); err != nil {
		t.Fatalf("login via stdin failed: %v", err)
	}
	out := e.mustRun("whoami")
	if !strings.Contains(out, "admin") {
		t.Fatalf("expected whoami to show admin, got %q", out)
	}
}

func TestSessionPersistsAndLogout(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	e.mustRun("key", "list")
	e.mustRun("logout")
	if _, err := e.run("", "key", "list"); err == nil {
		t.Fatalf("expected key list to fail after logout")
	}
}

func TestScanSeededBarcode(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	out := e.mustRun("scan", "123456789")
	if !strings.Contains(out, "Офис 101") {
		t.Fatalf("expected seeded key name, got %q", out)
	}
	if !strings.Contains(out, "Available") {
		t.Fatalf("expected key to be available, got %q", out)
	}
}

func TestScanUnknownBarcode(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	_, err := e.run("", "scan", "000")
	if err == nil || !strings.Contains(err.Error(), "No key with this barcode was found") {
		t.Fatalf("expected not-found alert, got %v", err)
	}
}

func TestAssignReturnFlow(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	out := e.mustRun("key", "add", "--barcode", "555", "--name", "Server Room", "--location", "Basement")
	if !strings.Contains(out, "Server Room") {
		t.Fatalf("unexpected add output: %q", out)
	}

	e.mustRun("assign", "555", "1", "--notes", "night shift")

	if _, err := e.run("", "assign", "555", "2"); err == nil || !strings.Contains(err.Error(), "already issued") {
		t.Fatalf("expected second assign to fail with already issued, got %v", err)
	}

	out = e.mustRun("active")
	if !strings.Contains(out, "Server Room") || !strings.Contains(out, "Иван Петров") {
		t.Fatalf("active list missing assignment: %q", out)
	}

	out = e.mustRun("scan", "555")
	if !strings.Contains(out, "already issued") {
		t.Fatalf("scan should report the key as issued: %q", out)
	}

	if _, err := e.run("", "key", "delete", "555"); err == nil {
		t.Fatalf("expected delete of an assigned key to fail")
	}

	e.mustRun("return", "--barcode", "555")

	out = e.mustRun("active")
	if !strings.Contains(out, "No keys are currently issued") {
		t.Fatalf("expected empty active list, got %q", out)
	}

	out = e.mustRun("history", "--key", "555")
	if !strings.Contains(out, "night shift") {
		t.Fatalf("history should show the note: %q", out)
	}

	e.mustRun("key", "delete", "555")
	out = e.mustRun("history")
	if !strings.Contains(out, "Unknown key") {
		t.Fatalf("history of a deleted key should show the placeholder: %q", out)
	}
}

func TestReturnUsage(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	if _, err := e.run("", "return"); err == nil {
		t.Fatalf("expected usage error without id or barcode")
	}
	if _, err := e.run("", "return", "--barcode", "123456789"); err == nil {
		t.Fatalf("expected error returning a key that is not out")
	}
}

func TestUserCommands(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	out := e.mustRun("user", "add", "--name", "Olga", "--email", "olga@company.com", "--department", "HR")
	if !strings.Contains(out, "Olga") {
		t.Fatalf("unexpected add output: %q", out)
	}
	out = e.mustRun("user", "list")
	for _, want := range []string{"Olga", "olga@company.com", "Мария Смирнова"} {
		if !strings.Contains(out, want) {
			t.Errorf("user list missing %q:\n%s", want, out)
		}
	}
	if _, err := e.run("", "user", "edit", "does-not-exist", "--name", "X"); err == nil {
		t.Fatalf("expected edit of unknown user to fail")
	}
	e.mustRun("user", "edit", "2", "--department", "Finance")
	out = e.mustRun("user", "list")
	if !strings.Contains(out, "Finance") {
		t.Fatalf("edit not applied:\n%s", out)
	}
}

func TestKeyAddRequiresBarcodeAndName(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	if _, err := e.run("", "key", "add", "--name", "No barcode"); err == nil {
		t.Fatalf("expected error for missing barcode")
	}
}

func TestBackupRestore(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	e.mustRun("key", "add", "--barcode", "777", "--name", "Archive")
	file := filepath.Join(e.dir, "snapshot")
	e.mustRun("backup", file)
	if _, err := os.Stat(backup.WithExtension(file)); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	e.mustRun("key", "delete", "777")
	if _, err := e.run("", "scan", "777"); err == nil {
		t.Fatalf("key should be gone before restore")
	}

	out, err := e.run("n\n", "restore", backup.WithExtension(file))
	if err != nil || !strings.Contains(out, "aborted") {
		t.Fatalf("expected restore to be aborted, got %q, %v", out, err)
	}

	e.mustRun("restore", "--yes", backup.WithExtension(file))
	out = e.mustRun("scan", "777")
	if !strings.Contains(out, "Archive") {
		t.Fatalf("restored key missing: %q", out)
	}
}

func TestRestoreRefusesEmptyBackup(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	e.mustRun("key", "add", "--barcode", "777", "--name", "Archive")

	var buf bytes.Buffer
	if err := backup.Write(&buf, model.BackupData{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	file := filepath.Join(e.dir, "empty.json.zst")
	if err := os.WriteFile(file, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := e.run("", "restore", "--yes", file); err == nil {
		t.Fatalf("restoring an empty backup should fail")
	}
	out := e.mustRun("scan", "777")
	if !strings.Contains(out, "Archive") {
		t.Fatalf("catalog must survive a refused restore: %q", out)
	}
}

func TestDoctorCleanLedger(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	out := e.mustRun("doctor")
	if !strings.Contains(out, "No problems found") {
		t.Fatalf("unexpected doctor output: %q", out)
	}
}

func TestConfigInitWritesUserFile(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("config", "init")
	path := filepath.Join(e.dir, "config", "keyledger", "keyledger.yaml")
	if !strings.Contains(out, path) {
		t.Fatalf("expected output to name %s, got %q", path, out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
}

func TestConfigHashPassword(t *testing.T) {
	e := newCLIEnv(t)
	out, err := e.run("s3cret\n", "config", "hash-password")
	if err != nil {
		t.Fatalf("hash-password failed: %v", err)
	}
	if !strings.Contains(out, "$2a$") {
		t.Fatalf("expected a bcrypt hash, got %q", out)
	}
}

func TestVersionAndDebugArePublic(t *testing.T) {
	e := newCLIEnv(t)
	if out := e.mustRun("version"); !strings.Contains(out, "Keyledger") {
		t.Fatalf("unexpected version output: %q", out)
	}
	out := e.mustRun("debug")
	if !strings.Contains(out, "KEYLEDGER DEBUG") {
		t.Fatalf("unexpected debug output: %q", out)
	}
}

func TestRootRunsTUI(t *testing.T) {
	e := newCLIEnv(t)
	called := false
	a := &app{runTUI: func(context.Context, *app) error { called = true; return nil }}
	root := newRootCmd(a)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--database.dsn", e.dsn})
	if err := root.Execute(); err != nil {
		t.Fatalf("root failed: %v", err)
	}
	a.close()
	if !called {
		t.Fatalf("expected the TUI to be started")
	}
}

func TestHelpNeedsNoSession(t *testing.T) {
	e := newCLIEnv(t)
	out, err := e.run("", "help", "key")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(out, "Manage the key catalog") {
		t.Fatalf("unexpected help output: %q", out)
	}
}
