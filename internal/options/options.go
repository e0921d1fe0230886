// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package options reads and writes WordPress options, decoding PHP
// serialized values into plain Go maps, lists and scalars.
package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/wpml2pll/internal/store"
)

// Store accesses the WordPress options table.
type Store struct {
	db    store.DBTX
	table string
}

// New creates an options store.
func New(db store.DBTX, tables store.Tables) *Store {
	return &Store{db: db, table: tables.Options()}
}

// Raw returns the stored option value as is.
func (s *Store) Raw(ctx context.Context, name string) (string, bool, error) {
	var raw string
	query := fmt.Sprintf(`SELECT option_value FROM %s WHERE option_name = ?`, s.table)
	err := s.db.QueryRowContext(ctx, query, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading option %s: %w", name, err)
	}
	return raw, true, nil
}

// Get returns the decoded option value and whether the option exists.
func (s *Store) Get(ctx context.Context, name string) (any, bool, error) {
	raw, ok, err := s.Raw(ctx, name)
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := Decode(raw)
	if err != nil {
		return nil, true, fmt.Errorf("decoding option %s: %w", name, err)
	}
	return v, true, nil
}

// Map returns an array option as a map. Missing or scalar options yield an empty map.
func (s *Store) Map(ctx context.Context, name string) (map[string]any, error) {
	v, _, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return ToMap(v), nil
}

// String returns an option as a string, empty when missing.
func (s *Store) String(ctx context.Context, name string) (string, error) {
	v, _, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return ToString(v), nil
}

// Set stores an option. Strings are stored verbatim, everything else is serialized.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	raw, ok := value.(string)
	if !ok {
		var err error
		if raw, err = Encode(value); err != nil {
			return fmt.Errorf("encoding option %s: %w", name, err)
		}
	}

	update := fmt.Sprintf(`UPDATE %s SET option_value = ? WHERE option_name = ?`, s.table)
	res, err := s.db.ExecContext(ctx, update, raw, name)
	if err != nil {
		return fmt.Errorf("updating option %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value is unchanged.
	if _, exists, err := s.Raw(ctx, name); err != nil {
		return err
	} else if exists {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (option_name, option_value, autoload) VALUES (?, ?, 'yes')`, s.table)
	if _, err := s.db.ExecContext(ctx, insert, name, raw); err != nil {
		return fmt.Errorf("inserting option %s: %w", name, err)
	}
	return nil
}

// Delete removes an option. Deleting a missing option is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE option_name = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("deleting option %s: %w", name, err)
	}
	return nil
}
