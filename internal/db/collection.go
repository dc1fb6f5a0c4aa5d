// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadCollection reads a JSON array of records from the named collection.
// found is false when the collection was never saved.
func LoadCollection[T any](ctx context.Context, s Store, name string) (items []T, found bool, err error) {
	payload, found, err := s.Load(ctx, name)
	if err != nil || !found {
		return nil, found, err
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// SaveCollection writes items as a JSON array. A nil slice is stored as an
// empty array so the collection counts as saved.
func SaveCollection[T any](ctx context.Context, s Store, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.Save(ctx, name, payload)
}

// LoadRecord reads a single JSON object from the named collection.
func LoadRecord[T any](ctx context.Context, s Store, name string) (rec T, found bool, err error) {
	payload, found, err := s.Load(ctx, name)
	if err != nil || !found {
		return rec, found, err
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, true, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return rec, true, nil
}

// SaveRecord writes rec as a single JSON object.
func SaveRecord[T any](ctx context.Context, s Store, name string, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.Save(ctx, name, payload)
}
