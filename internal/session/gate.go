// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session implements the login gate in front of the ledger. There is
// exactly one operator credential; a successful login is persisted so the
// next invocation of the CLI or TUI starts authenticated.
package session // import "github.com/toeirei/keyledger/internal/session"

import (
	"context"
	"fmt"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/model"
)

// Gate tracks whether the operator is logged in.
type Gate struct {
	mu      sync.RWMutex
	store   db.Store
	cred    Credential
	now     func() time.Time
	current model.Session
	log     *clog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithNow sets the time source used for Session.Since.
func WithNow(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger overrides the package logger.
func WithLogger(lg *clog.Logger) Option {
	return func(g *Gate) { g.log = lg }
}

// NewGate returns an anonymous gate checking logins against cred.
func NewGate(store db.Store, cred Credential, opts ...Option) *Gate {
	g := &Gate{
		store: store,
		cred:  cred,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logging.L,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Hydrate restores an authenticated session persisted by an earlier login.
// A persisted session for a different login than the configured one is
// ignored.
func (g *Gate) Hydrate(ctx context.Context) error {
	s, found, err := db.LoadRecord[model.Session](ctx, g.store, db.CollectionSession)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if found && s.IsAuthenticated && s.Login == g.cred.Login {
		g.current = s
		return nil
	}
	g.current = model.Anonymous
	return nil
}

// Login authenticates the operator. It returns false for a wrong pair; the
// error is only set when persisting the session fails.
func (g *Gate) Login(ctx context.Context, username, password string) (bool, error) {
	if !g.cred.Matches(username, password) {
		g.log.Warnf("session: rejected login for %q", username)
		return false, nil
	}

	s := model.Session{IsAuthenticated: true, Login: username, Since: g.now()}
	g.mu.Lock()
	g.current = s
	g.mu.Unlock()

	g.log.Debugf("session: %s logged in", username)
	if err := db.SaveRecord(ctx, g.store, db.CollectionSession, s); err != nil {
		return true, fmt.Errorf("persist session: %w", err)
	}
	return true, nil
}

// Logout returns to the anonymous state and removes the persisted session.
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.current = model.Anonymous
	g.mu.Unlock()
	if err := g.store.Remove(ctx, db.CollectionSession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the session state.
func (g *Gate) Current() model.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// IsAuthenticated reports whether an operator is logged in.
func (g *Gate) IsAuthenticated() bool {
	return g.Current().IsAuthenticated
}
