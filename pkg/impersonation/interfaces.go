// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package impersonation

import (
	"context"

	"github.com/canonical/access-control-service/internal/types"
)

// Result is the outcome of a successful impersonation call. The token
// represents the target user, never the issuing super admin.
type Result struct {
	AccessToken string
	Tenant      *types.Tenant
	Target      *types.User
}

type ServiceInterface interface {
	Impersonate(ctx context.Context, superAdminID, tenantID, targetUserID string) (*Result, error)
}

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	ListUsersByTenantID(ctx context.Context, tenantID string) ([]*types.User, error)
}

type TokenIssuerInterface interface {
	IssueImpersonationToken(ctx context.Context, superAdminID string, target *types.User) (string, error)
}

type AuditRecorderInterface interface {
	Record(ctx context.Context, action, actorID, tenantID string, metadata map[string]any) (*types.AuditEntry, error)
}
