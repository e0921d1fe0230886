// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(fakePinger{}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", status.Status)
	}
	if status.Version != "1.2.3" {
		t.Errorf("Version = %q", status.Version)
	}
	if status.Checks["database"].Status != "healthy" {
		t.Errorf("database check = %+v", status.Checks["database"])
	}
}

func TestHealthHandler_Health_Degraded(t *testing.T) {
	handler := NewHealthHandler(fakePinger{err: errors.New("connection refused")}, "dev")

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	if status.Checks["database"].Message == "" {
		t.Error("expected a failure message on the database check")
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(fakePinger{err: errors.New("down")}, "dev")

	w := httptest.NewRecorder()
	handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
