// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ledger is the authoritative custody bookkeeping of Keyledger. It
// owns the catalog of keys and employees and the assignment history between
// them, enforces that a key is out to at most one employee at a time, and
// writes every change through to a db.Store.
package ledger // import "github.com/toeirei/keyledger/internal/ledger"

import (
	"context"
	"fmt"
	"sync"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/model"
)

// Ledger holds the in-memory state and persists each mutation to the store.
// Collections keep insertion order.
type Ledger struct {
	mu    sync.RWMutex
	store db.Store
	clock Clock
	ids   IDGenerator
	seed  bool
	log   *clog.Logger

	keys        []model.Key
	users       []model.User
	assignments []model.Assignment
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDGenerator sets the identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithSeedDemoData controls whether never-saved collections are seeded with
// demo records on Hydrate. Enabled by default.
func WithSeedDemoData(enabled bool) Option {
	return func(l *Ledger) { l.seed = enabled }
}

// WithLogger sets the logger. Defaults to logging.L.
func WithLogger(lg *clog.Logger) Option {
	return func(l *Ledger) { l.log = lg }
}

// New returns an empty Ledger over store. Call Hydrate before use.
func New(store db.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		clock: SystemClock{},
		ids:   UUIDGenerator{},
		seed:  true,
		log:   logging.L,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hydrate replaces the in-memory state with the persisted collections.
// Keys and users that were never saved are seeded and persisted right away so
// the seed timestamps stay stable across runs.
func (l *Ledger) Hydrate(ctx context.Context) error {
	keys, keysFound, err := db.LoadCollection[model.Key](ctx, l.store, db.CollectionKeys)
	if err != nil {
		return fmt.Errorf("hydrate keys: %w", err)
	}
	users, usersFound, err := db.LoadCollection[model.User](ctx, l.store, db.CollectionUsers)
	if err != nil {
		return fmt.Errorf("hydrate users: %w", err)
	}
	assignments, _, err := db.LoadCollection[model.Assignment](ctx, l.store, db.CollectionAssignments)
	if err != nil {
		return fmt.Errorf("hydrate assignments: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.keys = keys
	l.users = users
	l.assignments = assignments

	if !keysFound && l.seed {
		l.keys = demoKeys(l.clock.Now())
		if err := l.saveKeys(ctx); err != nil {
			return err
		}
		l.log.Debugf("ledger: seeded %d demo keys", len(l.keys))
	}
	if !usersFound && l.seed {
		l.users = demoUsers(l.clock.Now())
		if err := l.saveUsers(ctx); err != nil {
			return err
		}
		l.log.Debugf("ledger: seeded %d demo users", len(l.users))
	}

	l.log.Debugf("ledger: hydrated %d keys, %d users, %d assignments", len(l.keys), len(l.users), len(l.assignments))
	return nil
}

// The save helpers must be called with l.mu held.

func (l *Ledger) saveKeys(ctx context.Context) error {
	return l.persisted(db.CollectionKeys, db.SaveCollection(ctx, l.store, db.CollectionKeys, l.keys))
}

func (l *Ledger) saveUsers(ctx context.Context) error {
	return l.persisted(db.CollectionUsers, db.SaveCollection(ctx, l.store, db.CollectionUsers, l.users))
}

func (l *Ledger) saveAssignments(ctx context.Context) error {
	return l.persisted(db.CollectionAssignments, db.SaveCollection(ctx, l.store, db.CollectionAssignments, l.assignments))
}

func (l *Ledger) persisted(name string, err error) error {
	if err != nil {
		l.log.Errorf("ledger: persisting %s failed: %v", name, err)
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

func (l *Ledger) keyIndex(id string) int {
	for i := range l.keys {
		if l.keys[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) userIndex(id string) int {
	for i := range l.users {
		if l.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) assignmentIndex(id string) int {
	for i := range l.assignments {
		if l.assignments[i].ID == id {
			return i
		}
	}
	return -1
}

// openAssignmentIndex returns the first open assignment for keyID.
func (l *Ledger) openAssignmentIndex(keyID string) int {
	for i := range l.assignments {
		if l.assignments[i].KeyID == keyID && l.assignments[i].IsActive() {
			return i
		}
	}
	return -1
}

// cloneAssignment copies a so callers never share the ReturnedAt pointer.
func cloneAssignment(a model.Assignment) model.Assignment {
	if a.ReturnedAt != nil {
		t := *a.ReturnedAt
		a.ReturnedAt = &t
	}
	return a
}
