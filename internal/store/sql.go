// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
)

// MaxParams caps bound parameters per statement, below both the MySQL
// (65535) and SQLite (32766) limits.
const MaxParams = 30000

// Placeholders returns n comma separated "?" markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Int64Args converts ids to query arguments.
func Int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// StringArgs converts strings to query arguments.
func StringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// BulkInsert writes rows with multi-row INSERT statements, splitting them so
// no statement exceeds MaxParams. It returns the number of rows written.
func BulkInsert(ctx context.Context, db DBTX, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("bulk insert into %s: no columns", table)
	}

	perChunk := MaxParams / len(columns)
	if perChunk < 1 {
		perChunk = 1
	}
	tuple := "(" + Placeholders(len(columns)) + ")"
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	var written int64
	for start := 0; start < len(rows); start += perChunk {
		end := min(start+perChunk, len(rows))
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(head)
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return written, fmt.Errorf("bulk insert into %s: row has %d values, want %d", table, len(row), len(columns))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(tuple)
			args = append(args, row...)
		}

		if _, err := db.ExecContext(ctx, sb.String(), args...); err != nil {
			return written, fmt.Errorf("bulk insert into %s: %w", table, err)
		}
		written += int64(len(chunk))
	}

	return written, nil
}
