// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// TenantStatus is the lifecycle state of a tenant. Tenants are never hard
// deleted, suspension is the only administrative lock.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// UserStatus is the lifecycle state of a user within its tenant.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserPending UserStatus = "pending"
	UserDeleted UserStatus = "deleted"
)

type Tenant struct {
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	Subdomain string       `db:"subdomain"`
	Status    TenantStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
}

type User struct {
	ID           string     `db:"id"`
	TenantID     string     `db:"tenant_id"`
	Email        string     `db:"email"`
	Role         string     `db:"role"`
	IsSuperAdmin bool       `db:"is_super_admin"`
	Status       UserStatus `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
}

type Document struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Title     string    `db:"title"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// AuditEntry is an immutable record of a privileged action. The storage
// layer exposes no update or delete operation for it.
type AuditEntry struct {
	ID        string         `db:"id"`
	Action    string         `db:"action"`
	ActorID   string         `db:"actor_id"`
	TenantID  string         `db:"tenant_id"`
	Metadata  map[string]any `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// Audit actions recorded by privileged operations.
const (
	AuditTenantSuspended    = "tenant.suspended"
	AuditTenantUnsuspended  = "tenant.unsuspended"
	AuditTenantImpersonated = "tenant.impersonated"
	AuditUserRoleChanged    = "user.role_changed"
)
