// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// TestTenantSuspensionLifecycle walks the whole privileged flow: provision a
// tenant with a member, impersonate it, suspend it, observe the member locked
// out immediately, lift the suspension, observe access restored, and check
// the audit trail.
func TestTenantSuspensionLifecycle(t *testing.T) {
	baseURL, token := requireEnv(t)
	admin := newAPIClient(baseURL, token)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	suffix := uniqueSuffix()
	subdomain := "e2e-" + suffix

	var tenantID string
	t.Run("Create Tenant", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", "/api/v0/superadmin/tenants", map[string]string{
			"name":      "E2E Tenant " + suffix,
			"subdomain": subdomain,
		})
		if err != nil {
			t.Fatalf("failed to create tenant: %v", err)
		}
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", status, body)
		}
		tenantID, _ = body["id"].(string)
		if tenantID == "" {
			t.Fatal("expected created tenant ID, got empty string")
		}
	})

	t.Run("Create Member", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/users", tenantID), map[string]string{
			"email": fmt.Sprintf("member-%s@example.com", suffix),
			"role":  "admin",
		})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", status, body)
		}
	})

	var memberToken string
	t.Run("Impersonate", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", "/api/v0/superadmin/impersonate/"+tenantID, map[string]string{})
		if err != nil {
			t.Fatalf("failed to impersonate: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, body)
		}
		if expires, _ := body["expires_in"].(float64); expires != 3600 {
			t.Errorf("expected expires_in 3600, got %v", body["expires_in"])
		}
		memberToken, _ = body["access_token"].(string)
		if memberToken == "" {
			t.Fatal("expected an access token")
		}
	})

	member := newAPIClient(baseURL, memberToken).withHeader("X-Tenant-Subdomain", subdomain)

	t.Run("Member Can Access Documents", func(t *testing.T) {
		status, body, err := member.do(ctx, "GET", "/api/v0/documents", nil)
		if err != nil {
			t.Fatalf("failed to list documents: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, body)
		}
	})

	t.Run("Suspend", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/suspend", tenantID), nil)
		if err != nil {
			t.Fatalf("failed to suspend tenant: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, body)
		}
	})

	t.Run("Member Locked Out While Suspended", func(t *testing.T) {
		status, body, err := member.do(ctx, "GET", "/api/v0/documents", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if status != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %v", status, body)
		}
		if code := errorCode(body); code != "TENANT_SUSPENDED" {
			t.Errorf("expected TENANT_SUSPENDED, got %q", code)
		}
	})

	t.Run("Suspend Is Idempotent", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/suspend", tenantID), nil)
		if err != nil {
			t.Fatalf("failed to re-suspend tenant: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200 on redundant suspend, got %d: %v", status, body)
		}
	})

	t.Run("Unsuspend Restores Access", func(t *testing.T) {
		status, body, err := admin.do(ctx, "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/unsuspend", tenantID), nil)
		if err != nil {
			t.Fatalf("failed to unsuspend tenant: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, body)
		}

		status, body, err = member.do(ctx, "GET", "/api/v0/documents", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200 after unsuspend, got %d: %v", status, body)
		}
	})

	t.Run("Audit Trail", func(t *testing.T) {
		status, body, err := admin.do(ctx, "GET", "/api/v0/superadmin/audit-logs?tenant_id="+tenantID, nil)
		if err != nil {
			t.Fatalf("failed to query audit log: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, body)
		}

		entries, _ := body["entries"].([]any)
		seen := map[string]bool{}
		for _, raw := range entries {
			entry, _ := raw.(map[string]any)
			action, _ := entry["action"].(string)
			seen[action] = true
		}

		for _, action := range []string{"tenant.suspended", "tenant.unsuspended", "tenant.impersonated"} {
			if !seen[action] {
				t.Errorf("expected audit action %q for tenant %s", action, tenantID)
			}
		}
	})
}
