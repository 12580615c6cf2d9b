// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"fmt"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

// ErrWrongTenant indicates a user id that exists but belongs to a different
// tenant than the one addressed by the request.
var ErrWrongTenant = fmt.Errorf("user belongs to a different tenant")

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	audit   AuditRecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(storage StorageInterface, audit AuditRecorderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	return &Service{
		storage: storage,
		audit:   audit,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) CreateTenant(ctx context.Context, name, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	return s.storage.CreateTenant(ctx, &types.Tenant{
		Name:      name,
		Subdomain: subdomain,
	})
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	return s.storage.GetTenantByID(ctx, id)
}

func (s *Service) GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenantBySubdomain")
	defer span.End()

	return s.storage.GetTenantBySubdomain(ctx, subdomain)
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	return s.storage.ListTenants(ctx)
}

// RenameTenant changes the display name. The subdomain is the tenant's
// identity and stays immutable after creation.
func (s *Service) RenameTenant(ctx context.Context, id, name string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RenameTenant")
	defer span.End()

	if err := s.storage.UpdateTenantName(ctx, id, name); err != nil {
		return nil, err
	}

	return s.storage.GetTenantByID(ctx, id)
}

// Suspend moves the tenant to suspended. The operation is idempotent,
// suspending an already suspended tenant succeeds and still appends an audit
// entry reflecting the resulting state.
func (s *Service) Suspend(ctx context.Context, actorID, tenantID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.Suspend")
	defer span.End()

	return s.setStatus(ctx, actorID, tenantID, types.TenantSuspended, types.AuditTenantSuspended)
}

// Unsuspend moves the tenant back to active, with the same idempotent and
// always-audited semantics as Suspend.
func (s *Service) Unsuspend(ctx context.Context, actorID, tenantID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.Unsuspend")
	defer span.End()

	return s.setStatus(ctx, actorID, tenantID, types.TenantActive, types.AuditTenantUnsuspended)
}

func (s *Service) setStatus(ctx context.Context, actorID, tenantID string, status types.TenantStatus, action string) (*types.Tenant, error) {
	previous, err := s.storage.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	t, err := s.storage.SetTenantStatus(ctx, tenantID, status)
	if err != nil {
		return nil, err
	}

	// The audit entry rides the same transaction as the status change. If it
	// cannot be written the whole operation fails.
	if _, err := s.audit.Record(ctx, action, actorID, tenantID, map[string]any{
		"previous_status": string(previous.Status),
		"status":          string(t.Status),
	}); err != nil {
		return nil, err
	}

	s.logger.Security().TenantStatusChanged(actorID, tenantID, string(t.Status))

	return t, nil
}

func (s *Service) CreateUser(ctx context.Context, tenantID, email, role string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateUser")
	defer span.End()

	if _, err := authorization.ParseRole(role); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	return s.storage.CreateUser(ctx, &types.User{
		TenantID: tenantID,
		Email:    email,
		Role:     role,
		Status:   types.UserActive,
	})
}

func (s *Service) ListUsers(ctx context.Context, tenantID string) ([]*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListUsers")
	defer span.End()

	return s.storage.ListUsersByTenantID(ctx, tenantID)
}

// UpdateUserRole changes a tenant member's role and appends a
// user.role_changed audit entry carrying both the old and the new role.
func (s *Service) UpdateUserRole(ctx context.Context, actorID, tenantID, userID, role string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateUserRole")
	defer span.End()

	if _, err := authorization.ParseRole(role); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.TenantID != tenantID {
		return nil, fmt.Errorf("user %q does not belong to tenant %q: %w", userID, tenantID, ErrWrongTenant)
	}

	if err := s.storage.UpdateUserRole(ctx, tenantID, userID, role); err != nil {
		return nil, err
	}

	if _, err := s.audit.Record(ctx, types.AuditUserRoleChanged, actorID, tenantID, map[string]any{
		"user_id":  userID,
		"old_role": user.Role,
		"new_role": role,
	}); err != nil {
		return nil, err
	}

	updated := *user
	updated.Role = role

	return &updated, nil
}
