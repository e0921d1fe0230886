// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/wpml2pll/internal/migration"
)

// StatusReader returns the recorded migration status.
type StatusReader interface {
	Status(ctx context.Context) (string, error)
}

// StatusHandler reports migration progress.
type StatusHandler struct {
	status StatusReader
	logger *slog.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(status StatusReader, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{status: status, logger: logger}
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	// Status is the last stage that ran, "completed", or empty.
	Status    string   `json:"status"`
	Completed bool     `json:"completed"`
	Stages    []string `json:"stages"`
}

// Status handles GET /status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Status(r.Context())
	if err != nil {
		h.logger.Error("reading migration status failed", "error", err)
		WriteInternalError(w, "Failed to read migration status")
		return
	}
	WriteJSON(w, http.StatusOK, StatusResponse{
		Status:    status,
		Completed: status == migration.StatusCompleted,
		Stages:    migration.StageOrder,
	})
}
