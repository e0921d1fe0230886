// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store opens the WordPress database and provides the SQL helpers
// shared by the WPML reader and the Polylang writer.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is a DBTX that can also start transactions.
type DB interface {
	DBTX
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// DBConfig holds database configuration options.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultDBConfig returns pool defaults suited to a batch job.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Open opens the WordPress database with the default pool configuration.
func Open(driver, dsn string) (*sql.DB, error) {
	return OpenWithConfig(driver, dsn, DefaultDBConfig())
}

// OpenWithConfig opens the WordPress database.
// MySQL DSNs get parseTime enabled; SQLite databases get WAL and a busy timeout.
func OpenWithConfig(driver, dsn string, cfg DBConfig) (*sql.DB, error) {
	switch driver {
	case DriverMySQL:
		if !strings.Contains(dsn, "parseTime=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true"
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if driver == DriverSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA synchronous=NORMAL",
		}
		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate creates the side tables owned by the migration tool for the site
// behind tables. dialect is a goose dialect name ("mysql" or "sqlite3").
// Each prefix keeps its own goose version table.
func Migrate(ctx context.Context, db *sql.DB, dialect string, tables Tables) error {
	provider, err := goose.NewProvider(goose.Dialect(dialect), db, nil,
		goose.WithTableName(tables.Version()),
		goose.WithGoMigrations(sideTableMigrations(tables)...),
		goose.WithDisableGlobalRegistry(true),
		goose.WithLogger(goose.NopLogger()),
	)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// sideTableMigrations returns the schema history of the side tables with
// table and index names resolved for the site prefix.
func sideTableMigrations(t Tables) []*goose.Migration {
	members, events := t.Members(), t.Events()
	return []*goose.Migration{
		goose.NewGoMigration(1,
			execStatements(
				`CREATE TABLE IF NOT EXISTS `+members+` (
    group_id BIGINT NOT NULL,
    taxonomy VARCHAR(32) NOT NULL,
    language_code VARCHAR(16) NOT NULL,
    object_id BIGINT NOT NULL,
    PRIMARY KEY (group_id, language_code)
)`,
				`CREATE INDEX idx_`+t.Prefix()+`wpml2pll_members_object ON `+members+` (taxonomy, object_id)`,
			),
			execStatements(`DROP TABLE IF EXISTS `+members),
		),
		goose.NewGoMigration(2,
			execStatements(
				`CREATE TABLE IF NOT EXISTS `+events+` (
    level VARCHAR(16) NOT NULL,
    category VARCHAR(64) NOT NULL,
    message TEXT NOT NULL,
    metadata TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`,
				`CREATE INDEX idx_`+t.Prefix()+`wpml2pll_events_created ON `+events+` (created_at)`,
			),
			execStatements(`DROP TABLE IF EXISTS `+events),
		),
	}
}

func execStatements(stmts ...string) *goose.GoFunc {
	return &goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}}
}

// Dialect maps a database/sql driver name to its goose dialect.
func Dialect(driver string) string {
	if driver == DriverMySQL {
		return "mysql"
	}
	return "sqlite3"
}

// WithTx runs fn inside a transaction, committing on success.
func WithTx(ctx context.Context, db DB, fn func(tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
