// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// CollectionModel is the Bun mapping of one persisted collection.
type CollectionModel struct {
	bun.BaseModel `bun:"table:collections"`
	Name          string    `bun:"name,pk"`
	Payload       string    `bun:"payload"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// BunStore persists collections in a SQL database through Bun.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

// BunDB exposes the underlying Bun handle. Used by tests.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Type returns the database type the store was opened with.
func (s *BunStore) Type() string { return s.dbType }

// Load returns the payload of the named collection.
func (s *BunStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	var m CollectionModel
	err := s.bun.NewSelect().
		Model(&m).
		Column("name", "payload").
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}
	return []byte(m.Payload), true, nil
}

// Save replaces the named collection. The delete and insert run in one
// transaction so a reader never sees the collection missing.
func (s *BunStore) Save(ctx context.Context, name string, payload []byte) error {
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*CollectionModel)(nil)).Where("name = ?", name).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&CollectionModel{
			Name:      name,
			Payload:   string(payload),
			UpdatedAt: time.Now().UTC(),
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", name, MapDBError(err))
	}
	return nil
}

// Remove deletes the named collection. Removing a missing collection is not
// an error.
func (s *BunStore) Remove(ctx context.Context, name string) error {
	if _, err := s.bun.NewDelete().Model((*CollectionModel)(nil)).Where("name = ?", name).Exec(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Names lists the stored collection names in alphabetical order.
func (s *BunStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.bun.NewSelect().Model((*CollectionModel)(nil)).Column("name").Order("name ASC").Scan(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Close closes the underlying database.
func (s *BunStore) Close() error {
	return s.bun.Close()
}
