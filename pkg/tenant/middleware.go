// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"errors"
	"net/http"

	httptypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
)

// SubdomainHeader carries the tenant the request addresses. It only selects
// the tenant, authorization for it still comes from the token.
const SubdomainHeader = "X-Tenant-Subdomain"

type Middleware struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// EnforceTenant resolves the addressed tenant and applies the live
// suspension check. The tenant status is read on every request, a suspension
// takes effect immediately for all members regardless of role and regardless
// of any still valid session tokens. Super admin principals bypass the
// suspension check but not tenant resolution.
func (m *Middleware) EnforceTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "tenant.Middleware.EnforceTenant")
			defer span.End()

			principal, ok := authentication.PrincipalFromContext(ctx)
			if !ok {
				httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "unauthenticated")
				return
			}

			var t *types.Tenant
			var err error

			if subdomain := r.Header.Get(SubdomainHeader); subdomain != "" {
				t, err = m.service.GetTenantBySubdomain(ctx, subdomain)
				if errors.Is(err, storage.ErrNotFound) {
					httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeTenantNotFound, "tenant not found")
					return
				}
			} else if principal.TenantID != "" {
				t, err = m.service.GetTenant(ctx, principal.TenantID)
				if errors.Is(err, storage.ErrNotFound) {
					// The token passed verification, so this tenant id was
					// valid when the token was issued. A miss here means the
					// store lost referential integrity.
					m.logger.Errorf("tenant %s from a valid token does not exist", principal.TenantID)
					httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "internal error")
					return
				}
			} else {
				httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "tenant subdomain header is required")
				return
			}

			if err != nil {
				m.logger.Errorf("failed to resolve tenant: %v", err)
				httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "internal error")
				return
			}

			if !principal.IsSuperAdmin && principal.TenantID != t.ID {
				m.logger.Security().AuthzFailure(principal.UserID, "cross_tenant_access")
				httptypes.WriteError(w, http.StatusForbidden, httptypes.CodeForbidden, "token does not grant access to this tenant")
				return
			}

			if t.Status == types.TenantSuspended && !principal.IsSuperAdmin {
				m.logger.Security().AuthzFailure(principal.UserID, "suspended_tenant_access")
				httptypes.WriteError(w, http.StatusForbidden, httptypes.CodeTenantSuspended, "tenant is suspended")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(ctx, t)))
		})
	}
}
