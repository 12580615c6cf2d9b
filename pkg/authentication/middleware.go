// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"errors"
	"net/http"
	"strings"

	httpTypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
)

type Middleware struct {
	tokens  TokenServiceInterface
	machine TokenVerifierInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate resolves the bearer token to a principal. First-party tokens
// are tried first; if a machine verifier is configured, externally issued
// OIDC tokens are accepted for super-admin automation clients. Expired and
// malformed tokens produce identical responses, only server logs differ.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			token, found := m.getBearerToken(r.Header)
			if !found {
				m.unauthenticatedResponse(w)
				return
			}

			claims, err := m.tokens.VerifyToken(ctx, token)
			if err == nil {
				ctx = WithPrincipal(ctx, Principal{
					UserID:         claims.Subject,
					TenantID:       claims.TenantID,
					Role:           claims.Role,
					IsSuperAdmin:   claims.IsSuperAdmin,
					Impersonation:  claims.Impersonation,
					ImpersonatorID: claims.ImpersonatorID,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if m.machine != nil {
				subject, machineErr := m.machine.VerifyToken(ctx, token)
				if machineErr == nil {
					ctx = WithPrincipal(ctx, Principal{
						UserID:       subject,
						IsSuperAdmin: true,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				m.logger.Debugf("machine token verification failed: %v", machineErr)
			}

			switch {
			case errors.Is(err, ErrExpiredToken):
				m.logger.Security().AuthnFailure("", "token expired")
			default:
				m.logger.Security().AuthnFailure("", "token malformed")
			}
			m.logger.Debugf("token verification failed: %v", err)
			m.unauthenticatedResponse(w)
		})
	}
}

// RequireSuperAdmin is the single guard every privileged operation sits
// behind. The caller is authenticated but not authorized, so the response is
// a 403 distinct from authentication failures.
func (m *Middleware) RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.RequireSuperAdmin")
			defer span.End()

			principal, ok := PrincipalFromContext(ctx)
			if !ok {
				m.unauthenticatedResponse(w)
				return
			}

			if !principal.IsSuperAdmin {
				m.logger.Security().AuthzFailure(principal.UserID, "superadmin_access")
				httpTypes.WriteError(w, http.StatusForbidden, httpTypes.CodeForbidden, "not a super admin")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", false
	}

	return strings.TrimPrefix(bearer, "Bearer "), true
}

func (m *Middleware) unauthenticatedResponse(w http.ResponseWriter) {
	httpTypes.WriteError(w, http.StatusUnauthorized, httpTypes.CodeUnauthenticated, "invalid or missing token")
}

func NewMiddleware(tokens TokenServiceInterface, machine TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tokens:  tokens,
		machine: machine,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
