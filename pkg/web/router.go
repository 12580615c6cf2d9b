// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/db"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/pkg/audit"
	"github.com/canonical/access-control-service/pkg/authentication"
	"github.com/canonical/access-control-service/pkg/document"
	"github.com/canonical/access-control-service/pkg/impersonation"
	"github.com/canonical/access-control-service/pkg/metrics"
	"github.com/canonical/access-control-service/pkg/status"
	"github.com/canonical/access-control-service/pkg/tenant"
	"github.com/canonical/access-control-service/pkg/webhooks"
)

func NewRouter(
	store storage.StorageInterface,
	auditStore storage.AuditStorageInterface,
	dbClient db.DBClientInterface,
	tokens authentication.TokenServiceInterface,
	machine authentication.TokenVerifierInterface,
	webhookSecret string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	router.Use(
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
	)

	auditService := audit.NewService(auditStore, tracer, monitor, logger)
	tenantService := tenant.NewService(store, auditService, tracer, monitor, logger)
	impersonationService := impersonation.NewService(store, tokens, auditService, tracer, monitor, logger)
	documentService := document.NewService(store, tracer, monitor, logger)
	authorizer := authorization.NewAuthorizer(tracer, monitor, logger)

	authMiddleware := authentication.NewMiddleware(tokens, machine, tracer, monitor, logger)
	tenantMiddleware := tenant.NewMiddleware(tenantService, tracer, monitor, logger)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	if webhookSecret != "" {
		webhookService := webhooks.NewService(store, tracer, monitor, logger)
		router.Group(func(wr chi.Router) {
			wr.Use(db.TransactionMiddleware(dbClient, logger))
			webhooks.NewAPI(webhookService, webhookSecret, logger).RegisterEndpoints(wr)
		})
	}

	router.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate())

		// Privileged surface. Super admins only, no tenant scoping and no
		// suspension check.
		r.Group(func(sr chi.Router) {
			sr.Use(
				authMiddleware.RequireSuperAdmin(),
				db.TransactionMiddleware(dbClient, logger),
			)

			tenant.NewAPI(tenantService, tracer, monitor, logger).RegisterEndpoints(sr)
			impersonation.NewAPI(impersonationService, tracer, monitor, logger).RegisterEndpoints(sr)
			audit.NewAPI(auditService, tracer, monitor, logger).RegisterEndpoints(sr)
		})

		// Tenant-scoped surface. Every request resolves its tenant and passes
		// the live suspension check before reaching a handler.
		r.Group(func(tr chi.Router) {
			tr.Use(
				tenantMiddleware.EnforceTenant(),
				db.TransactionMiddleware(dbClient, logger),
			)

			document.NewAPI(documentService, authorizer, tracer, monitor, logger).RegisterEndpoints(tr)
		})
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(
		cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", tenant.SubdomainHeader},
			MaxAge:         300,
		},
	)
}
