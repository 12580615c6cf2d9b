// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

// ErrAlreadyRegistered means the email already belongs to a user, the signup
// flow retried a webhook that previously succeeded.
var ErrAlreadyRegistered = errors.New("email is already registered")

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// HandleRegistration provisions a tenant for a fresh signup together with its
// first user, who becomes the tenant admin.
func (s *Service) HandleRegistration(ctx context.Context, email, tenantName, subdomain string) (*types.Tenant, *types.User, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	if email == "" {
		return nil, nil, fmt.Errorf("email is required")
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, ErrAlreadyRegistered
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	if tenantName == "" {
		tenantName = fmt.Sprintf("%s's Org", email)
	}
	if subdomain == "" {
		subdomain = subdomainFromEmail(email)
	}

	tenant, err := s.storage.CreateTenant(ctx, &types.Tenant{
		Name:      tenantName,
		Subdomain: subdomain,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		// Subdomain collision, retry once with a random suffix.
		suffixed := fmt.Sprintf("%s-%s", subdomain, uuid.NewString()[:8])
		tenant, err = s.storage.CreateTenant(ctx, &types.Tenant{
			Name:      tenantName,
			Subdomain: suffixed,
		})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, &types.User{
		TenantID: tenant.ID,
		Email:    email,
		Role:     authorization.RoleAdmin.String(),
		Status:   types.UserActive,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Infof("provisioned tenant %s for %s", tenant.ID, email)

	return tenant, user, nil
}

// subdomainFromEmail derives a DNS label from the local part of the email.
func subdomainFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteByte('-')
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "tenant-" + uuid.NewString()[:8]
	}

	return out
}
