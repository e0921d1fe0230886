// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the migration event log table, so a run can be audited afterwards.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/wpml2pll/internal/store"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryMigration = "migration"
	EventCategoryLanguage  = "language"
	EventCategoryDatabase  = "database"
	EventCategoryCache     = "cache"
	EventCategorySystem    = "system"
)

// Event is one row of the event log.
type Event struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the event log table.
type EventLogHandler struct {
	inner slog.Handler
	db    store.DBTX
	table string
	level slog.Level // Minimum level to forward to the event log (default: WARN)
	attrs []slog.Attr
	group string
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
func NewEventLogHandler(inner slog.Handler, db store.DBTX, tables store.Tables) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, tables, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db store.DBTX, tables store.Tables, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, db: db, table: tables.Events(), level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	next.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.inner = h.inner.WithGroup(name)
	next.group = h.qualifyKey(name)
	return next
}

func (h *EventLogHandler) clone() *EventLogHandler {
	return &EventLogHandler{
		inner: h.inner,
		db:    h.db,
		table: h.table,
		level: h.level,
		attrs: append([]slog.Attr(nil), h.attrs...),
		group: h.group,
	}
}

func (h *EventLogHandler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *EventLogHandler) qualify(a slog.Attr) slog.Attr {
	return slog.Attr{Key: h.qualifyKey(a.Key), Value: a.Value}
}

// writeToEventLog writes a log record to the event log table. Failures are
// dropped: the record already reached the inner handler.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	query := fmt.Sprintf(`INSERT INTO %s (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.table)
	// The caller's context may already be cancelled when it logs the failure.
	_, _ = h.db.ExecContext(context.Background(), query,
		slogLevelToEventLevel(r.Level), extractCategory(r.Message, attrs), r.Message, extractMetadata(attrs), r.Time.UTC())
}

func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return EventLevelError
	case level >= slog.LevelWarn:
		return EventLevelWarning
	default:
		return EventLevelInfo
	}
}

// extractCategory uses an explicit "category" attribute, then a "stage"
// attribute, then keywords in the message.
func extractCategory(msg string, attrs []slog.Attr) string {
	hasStage := false
	for _, a := range attrs {
		switch a.Key {
		case "category":
			return a.Value.String()
		case "stage":
			hasStage = true
		}
	}
	if hasStage {
		return EventCategoryMigration
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "language") || strings.Contains(msg, "locale"):
		return EventCategoryLanguage
	case strings.Contains(msg, "database") || strings.Contains(msg, "transaction"):
		return EventCategoryDatabase
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return EventCategoryCache
	case strings.Contains(msg, "migration") || strings.Contains(msg, "step"):
		return EventCategoryMigration
	default:
		return EventCategorySystem
	}
}

// extractMetadata collects the attributes into a JSON object of strings.
func extractMetadata(attrs []slog.Attr) string {
	meta := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		meta[a.Key] = a.Value.Resolve().String()
	}
	if len(meta) == 0 {
		return "{}"
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// RecentEvents returns up to limit events, newest first.
func RecentEvents(ctx context.Context, db store.DBTX, tables store.Tables, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT level, category, message, metadata, created_at FROM %s ORDER BY created_at DESC LIMIT ?`,
		tables.Events())
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
