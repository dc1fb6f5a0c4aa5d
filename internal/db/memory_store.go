// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store used in tests and for throwaway sessions.
// Setting an entry in FailSave or FailLoad makes the matching call on that
// collection return the given error.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   []string
	FailSave map[string]error
	FailLoad map[string]error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		FailSave: make(map[string]error),
		FailLoad: make(map[string]error),
	}
}

// Load returns a copy of the stored payload.
func (m *MemoryStore) Load(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailLoad[name]; err != nil {
		return nil, false, err
	}
	b, ok := m.data[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Save stores a copy of payload and records the write.
func (m *MemoryStore) Save(_ context.Context, name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailSave[name]; err != nil {
		return err
	}
	m.data[name] = append([]byte(nil), payload...)
	m.writes = append(m.writes, name)
	return nil
}

// Remove deletes the named collection.
func (m *MemoryStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// Writes returns the collection names in the order they were saved.
func (m *MemoryStore) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// ResetWrites clears the write log.
func (m *MemoryStore) ResetWrites() {
	m.mu.Lock()
	m.writes = nil
	m.mu.Unlock()
}

// Raw returns the stored payload, bypassing FailLoad.
func (m *MemoryStore) Raw(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[name]
	return b, ok
}

// Put stores payload directly, bypassing FailSave and the write log.
func (m *MemoryStore) Put(name string, payload []byte) {
	m.mu.Lock()
	m.data[name] = append([]byte(nil), payload...)
	m.mu.Unlock()
}
