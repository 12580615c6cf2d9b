// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/access-control-service/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, status types.TenantStatus) (*types.Tenant, error)
	UpdateTenantName(ctx context.Context, id, name string) error

	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	ListUsersByTenantID(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUserRole(ctx context.Context, tenantID, userID, role string) error

	CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error)
	ListDocumentsByTenantID(ctx context.Context, tenantID string) ([]*types.Document, error)
}

// AuditFilter narrows audit queries. Zero values are ignored.
type AuditFilter struct {
	Action   string
	TenantID string
	ActorID  string
	Since    time.Time
	Until    time.Time
	Limit    uint64
}

// AuditStorageInterface is deliberately append-only, there is no update or
// delete operation for audit entries.
type AuditStorageInterface interface {
	CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error)
	ListAuditEntries(ctx context.Context, f AuditFilter) ([]*types.AuditEntry, error)
}
