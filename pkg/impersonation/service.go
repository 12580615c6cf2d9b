// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package impersonation

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

var (
	// ErrNoEligibleTarget means the tenant has no active user to impersonate.
	ErrNoEligibleTarget = errors.New("tenant has no active user to impersonate")

	// ErrTargetNotInTenant means an explicitly requested target user exists
	// but does not belong to the addressed tenant.
	ErrTargetNotInTenant = errors.New("target user does not belong to tenant")
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	tokens  TokenIssuerInterface
	audit   AuditRecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(storage StorageInterface, tokens TokenIssuerInterface, audit AuditRecorderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	return &Service{
		storage: storage,
		tokens:  tokens,
		audit:   audit,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// Impersonate issues a short-lived token for a user of the given tenant. No
// credential of the target user is read or required. The audit entry is
// written before the token leaves this function, if it cannot be written no
// token is returned.
func (s *Service) Impersonate(ctx context.Context, superAdminID, tenantID, targetUserID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "impersonation.Service.Impersonate")
	defer span.End()

	tenant, err := s.storage.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(ctx, tenant.ID, targetUserID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueImpersonationToken(ctx, superAdminID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to issue impersonation token: %w", err)
	}

	if _, err := s.audit.Record(ctx, types.AuditTenantImpersonated, superAdminID, tenant.ID, map[string]any{
		"target_user_id": target.ID,
		"target_email":   target.Email,
		"target_role":    target.Role,
	}); err != nil {
		return nil, err
	}

	s.logger.Security().ImpersonationIssued(superAdminID, tenant.ID, target.ID)

	return &Result{
		AccessToken: token,
		Tenant:      tenant,
		Target:      target,
	}, nil
}

// resolveTarget picks the user the token will represent. An explicit target
// wins. Otherwise the earliest created active admin of the tenant is chosen,
// falling back to the earliest created active user of any role.
func (s *Service) resolveTarget(ctx context.Context, tenantID, targetUserID string) (*types.User, error) {
	if targetUserID != "" {
		user, err := s.storage.GetUserByID(ctx, targetUserID)
		if err != nil {
			return nil, err
		}
		if user.TenantID != tenantID {
			return nil, ErrTargetNotInTenant
		}
		if user.Status != types.UserActive {
			return nil, ErrNoEligibleTarget
		}
		return user, nil
	}

	users, err := s.storage.ListUsersByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Storage returns users ordered by creation time.
	var fallback *types.User
	for _, u := range users {
		if u.Status != types.UserActive {
			continue
		}
		if u.Role == authorization.RoleAdmin.String() {
			return u, nil
		}
		if fallback == nil {
			fallback = u
		}
	}

	if fallback == nil {
		return nil, ErrNoEligibleTarget
	}

	return fallback, nil
}
