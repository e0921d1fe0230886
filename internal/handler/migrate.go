// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/olegiv/wpml2pll/internal/migration"
)

// maxRequestBody bounds the size of a migrate request.
const maxRequestBody = 1 << 16

// MigrateHandler runs one migration step per request.
type MigrateHandler struct {
	newDriver migration.DriverFactory
	logger    *slog.Logger
	// mu lets a single step run at a time.
	mu sync.Mutex
}

// NewMigrateHandler creates a migrate handler. A driver is built per request
// so each step sees freshly loaded settings.
func NewMigrateHandler(newDriver migration.DriverFactory, logger *slog.Logger) *MigrateHandler {
	return &MigrateHandler{newDriver: newDriver, logger: logger}
}

type migrateRequest struct {
	Action string `json:"action"`
	Step   *int   `json:"step"`
}

// Migrate handles POST /migrate with {"action": ..., "step": ...} as JSON or
// form fields. The step defaults to 1.
func (h *MigrateHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMigrateRequest(w, r)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	if !h.mu.TryLock() {
		WriteConflict(w, "step_in_progress", "Another migration step is running", nil)
		return
	}
	defer h.mu.Unlock()

	d, err := h.newDriver(r.Context())
	if err != nil {
		h.logger.Error("building migration driver failed", "error", err)
		WriteInternalError(w, "Failed to prepare the migration")
		return
	}

	resp, err := d.Handle(r.Context(), req)
	if err != nil {
		h.writeMigrationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *MigrateHandler) writeMigrationError(w http.ResponseWriter, err error) {
	var preflight *migration.PreflightError
	switch {
	case errors.Is(err, migration.ErrProtocol):
		WriteBadRequest(w, err.Error(), nil)
	case errors.As(err, &preflight):
		details := make(map[string]string, len(preflight.Problems))
		for i, p := range preflight.Problems {
			details["problem_"+strconv.Itoa(i+1)] = p
		}
		WriteConflict(w, "precondition_failed", "The site cannot be migrated", details)
	case errors.Is(err, migration.ErrPrecondition):
		WriteConflict(w, "precondition_failed", err.Error(), nil)
	default:
		h.logger.Error("migration step failed", "error", err)
		WriteInternalError(w, "Migration step failed")
	}
}

func decodeMigrateRequest(w http.ResponseWriter, r *http.Request) (migration.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var in migrateRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return migration.Request{}, fmt.Errorf("invalid JSON body: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return migration.Request{}, fmt.Errorf("invalid form data: %w", err)
		}
		in.Action = r.FormValue("action")
		if raw := strings.TrimSpace(r.FormValue("step")); raw != "" {
			step, err := strconv.Atoi(raw)
			if err != nil {
				return migration.Request{}, fmt.Errorf("step must be an integer, got %q", raw)
			}
			in.Step = &step
		}
	}

	req := migration.Request{Action: strings.TrimSpace(in.Action), Step: 1}
	if in.Step != nil {
		req.Step = *in.Step
	}
	return req, nil
}
