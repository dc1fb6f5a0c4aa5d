// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"

	"github.com/toeirei/keyledger/internal/model"
)

// AddKey registers a new, available key. Barcodes are not required to be
// unique; a duplicate is logged and KeyByBarcode keeps returning the first
// match.
func (l *Ledger) AddKey(ctx context.Context, in model.KeyInput) (model.Key, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, k := range l.keys {
		if k.Barcode == in.Barcode {
			l.log.Warnf("ledger: barcode %q already used by key %s", in.Barcode, k.ID)
			break
		}
	}

	k := model.Key{
		ID:          l.ids.NewID(),
		Barcode:     in.Barcode,
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		IsAvailable: true,
		CreatedAt:   l.clock.Now(),
	}
	l.keys = append(l.keys, k)
	l.log.Debugf("ledger: added key %s (%s)", k.ID, k.Barcode)
	return k, l.saveKeys(ctx)
}

// UpdateKey replaces the mutable fields of a key. Availability is owned by
// AssignKey and ReturnKey and is left untouched.
func (l *Ledger) UpdateKey(ctx context.Context, id string, in model.KeyInput) (model.Key, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.keyIndex(id)
	if i < 0 {
		return model.Key{}, fmt.Errorf("key %s: %w", id, ErrNotFound)
	}
	k := &l.keys[i]
	k.Barcode = in.Barcode
	k.Name = in.Name
	k.Description = in.Description
	k.Location = in.Location
	l.log.Debugf("ledger: updated key %s", id)
	return *k, l.saveKeys(ctx)
}

// DeleteKey removes a key from the catalog. Closed assignments keep
// referencing the removed id. A key that is currently out cannot be deleted.
func (l *Ledger) DeleteKey(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.keyIndex(id)
	if i < 0 {
		return fmt.Errorf("key %s: %w", id, ErrNotFound)
	}
	if j := l.openAssignmentIndex(id); j >= 0 {
		return fmt.Errorf("key %s is assigned (assignment %s): %w", id, l.assignments[j].ID, ErrConflict)
	}
	l.keys = append(l.keys[:i:i], l.keys[i+1:]...)
	l.log.Debugf("ledger: deleted key %s", id)
	return l.saveKeys(ctx)
}
