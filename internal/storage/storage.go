// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/access-control-service/internal/db"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	var newTenant types.Tenant
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "subdomain", "status").
		Values(id.String(), t.Name, t.Subdomain, types.TenantActive).
		Suffix("RETURNING id, name, subdomain, status, created_at").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Name, &newTenant.Subdomain, &newTenant.Status, &newTenant.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("subdomain %q: %w", t.Subdomain, ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySubdomain")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"subdomain": subdomain})
}

func (s *Storage) getTenant(ctx context.Context, pred sq.Eq) (*types.Tenant, error) {
	var t types.Tenant
	err := s.db.Statement(ctx).
		Select("id", "name", "subdomain", "status", "created_at").
		From("tenants").
		Where(pred).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "name", "subdomain", "status", "created_at").
		From("tenants").
		OrderBy("created_at ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		var t types.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// SetTenantStatus performs an atomic single-row status update. Concurrent
// calls on the same tenant are last-writer-wins, which the idempotent
// suspend/unsuspend semantics allow.
func (s *Storage) SetTenantStatus(ctx context.Context, id string, status types.TenantStatus) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatus")
	defer span.End()

	var t types.Tenant
	err := s.db.Statement(ctx).
		Update("tenants").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, subdomain, status, created_at").
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set tenant status: %w", err)
	}

	return &t, nil
}

// UpdateTenantName renames the tenant. The subdomain is immutable after
// creation and no statement to change it exists.
func (s *Storage) UpdateTenantName(ctx context.Context, id, name string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenantName")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("name", name).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	status := u.Status
	if status == "" {
		status = types.UserActive
	}

	var tenantID any
	if u.TenantID != "" {
		tenantID = u.TenantID
	}

	var newUser types.User
	var scannedTenantID *string
	err = s.db.Statement(ctx).
		Insert("users").
		Columns("id", "tenant_id", "email", "role", "is_super_admin", "status").
		Values(id.String(), tenantID, u.Email, u.Role, u.IsSuperAdmin, status).
		Suffix("RETURNING id, tenant_id, email, role, is_super_admin, status, created_at").
		QueryRowContext(ctx).
		Scan(&newUser.ID, &scannedTenantID, &newUser.Email, &newUser.Role, &newUser.IsSuperAdmin, &newUser.Status, &newUser.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email %q: %w", u.Email, ErrDuplicateKey)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("tenant %q: %w", u.TenantID, ErrForeignKeyViolation)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	if scannedTenantID != nil {
		newUser.TenantID = *scannedTenantID
	}

	return &newUser, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByID")
	defer span.End()

	return s.getUser(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByEmail")
	defer span.End()

	return s.getUser(ctx, sq.Eq{"email": email})
}

func (s *Storage) getUser(ctx context.Context, pred sq.Eq) (*types.User, error) {
	var u types.User
	var tenantID *string
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "email", "role", "is_super_admin", "status", "created_at").
		From("users").
		Where(pred).
		QueryRowContext(ctx).
		Scan(&u.ID, &tenantID, &u.Email, &u.Role, &u.IsSuperAdmin, &u.Status, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if tenantID != nil {
		u.TenantID = *tenantID
	}

	return &u, nil
}

func (s *Storage) ListUsersByTenantID(ctx context.Context, tenantID string) ([]*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListUsersByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "tenant_id", "email", "role", "is_super_admin", "status", "created_at").
		From("users").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		var u types.User
		var tid *string
		if err := rows.Scan(&u.ID, &tid, &u.Email, &u.Role, &u.IsSuperAdmin, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if tid != nil {
			u.TenantID = *tid
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Storage) UpdateUserRole(ctx context.Context, tenantID, userID, role string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateUserRole")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("users").
		Set("role", role).
		Where(sq.Eq{
			"id":        userID,
			"tenant_id": tenantID,
		}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateDocument")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document ID: %w", err)
	}

	var newDoc types.Document
	err = s.db.Statement(ctx).
		Insert("documents").
		Columns("id", "tenant_id", "title", "created_by").
		Values(id.String(), d.TenantID, d.Title, d.CreatedBy).
		Suffix("RETURNING id, tenant_id, title, created_by, created_at").
		QueryRowContext(ctx).
		Scan(&newDoc.ID, &newDoc.TenantID, &newDoc.Title, &newDoc.CreatedBy, &newDoc.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("tenant %q: %w", d.TenantID, ErrForeignKeyViolation)
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	return &newDoc, nil
}

func (s *Storage) ListDocumentsByTenantID(ctx context.Context, tenantID string) ([]*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListDocumentsByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "tenant_id", "title", "created_by", "created_at").
		From("documents").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*types.Document
	for rows.Next() {
		var d types.Document
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Title, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}
