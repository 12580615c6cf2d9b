// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/access-control-service/internal/types"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, name, subdomain string) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	RenameTenant(ctx context.Context, id, name string) (*types.Tenant, error)
	Suspend(ctx context.Context, actorID, tenantID string) (*types.Tenant, error)
	Unsuspend(ctx context.Context, actorID, tenantID string) (*types.Tenant, error)
	CreateUser(ctx context.Context, tenantID, email, role string) (*types.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUserRole(ctx context.Context, actorID, tenantID, userID, role string) (*types.User, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, status types.TenantStatus) (*types.Tenant, error)
	UpdateTenantName(ctx context.Context, id, name string) error
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	ListUsersByTenantID(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUserRole(ctx context.Context, tenantID, userID, role string) error
}

type AuditRecorderInterface interface {
	Record(ctx context.Context, action, actorID, tenantID string, metadata map[string]any) (*types.AuditEntry, error)
}
