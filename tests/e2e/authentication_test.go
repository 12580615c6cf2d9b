// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestAuthenticationRequired(t *testing.T) {
	baseURL, _ := requireEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tests := []struct {
		name  string
		token string
	}{
		{"Missing Token", ""},
		{"Malformed Token", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newAPIClient(baseURL, tt.token)
			status, body, err := client.do(ctx, "GET", "/api/v0/superadmin/tenants", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d: %v", status, body)
			}
			if code := errorCode(body); code != "UNAUTHENTICATED" {
				t.Errorf("expected UNAUTHENTICATED, got %q", code)
			}
		})
	}
}

func TestStatusEndpointIsPublic(t *testing.T) {
	baseURL, _ := requireEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := newAPIClient(baseURL, "")
	status, body, err := client.do(ctx, "GET", "/api/v0/status", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
}
