// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and reads Zstandard-compressed JSON snapshots of the
// ledger.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/keyledger/internal/model"
)

// Extension is appended to backup files that lack it.
const Extension = ".zst"

// Source yields the data to back up.
type Source interface {
	Export() model.BackupData
}

// Target accepts restored data.
type Target interface {
	Restore(ctx context.Context, data model.BackupData) error
}

// DefaultFilename returns keyledger-backup-YYYY-MM-DD.json.zst for now.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("keyledger-backup-%s.json%s", now.Format("2006-01-02"), Extension)
}

// WithExtension appends Extension to name when missing.
func WithExtension(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// Write encodes data as indented JSON inside a zstd stream.
func Write(w io.Writer, data model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not flush zstd writer: %w", err)
	}
	return nil
}

// Read decodes a backup written by Write.
func Read(r io.Reader) (model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return model.BackupData{}, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return model.BackupData{}, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	return data, nil
}

// WriteFile exports src into filename and returns the exported data.
func WriteFile(filename string, src Source) (model.BackupData, error) {
	data := src.Export()
	f, err := os.Create(filename)
	if err != nil {
		return data, fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, data); err != nil {
		_ = f.Close()
		return data, err
	}
	return data, f.Close()
}

// RestoreFile reads filename and hands its contents to dst.
func RestoreFile(ctx context.Context, filename string, dst Target) (model.BackupData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return model.BackupData{}, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := Read(f)
	if err != nil {
		return data, err
	}
	return data, dst.Restore(ctx, data)
}
