// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/olegiv/wpml2pll/internal/logging"
	"github.com/olegiv/wpml2pll/internal/store"
)

// Event list limits.
const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

// EventsHandler lists the warnings and errors recorded during runs.
type EventsHandler struct {
	db     store.DBTX
	tables store.Tables
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db store.DBTX, tables store.Tables, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{db: db, tables: tables, logger: logger}
}

// List handles GET /events?limit=N.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteBadRequest(w, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxEventsLimit)
	}

	events, err := logging.RecentEvents(r.Context(), h.db, h.tables, limit)
	if err != nil {
		h.logger.Error("listing events failed", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	if events == nil {
		events = []logging.Event{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
