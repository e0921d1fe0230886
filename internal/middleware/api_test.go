// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestTokenAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"disabled", "", "", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"valid", "s3cret", "Bearer s3cret", http.StatusOK},
		{"scheme case", "s3cret", "bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/migrate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			TokenAuth(tt.token)(okHandler).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Code == http.StatusUnauthorized {
				var apiErr APIError
				if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
					t.Fatalf("unmarshal error body: %v", err)
				}
				if apiErr.Error.Code != "unauthorized" {
					t.Errorf("code = %q, want unauthorized", apiErr.Error.Code)
				}
			}
		})
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	mw := NewGlobalRateLimiter(0.001, 2).Middleware()(okHandler)

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/migrate", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		return w.Code
	}

	for i := range 2 {
		if code := do("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := do("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", code)
	}
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}
}
