// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package impersonation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/pkg/authentication"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/v0/superadmin/impersonate/{tenant_id}", a.handleImpersonate)
}

type impersonateRequest struct {
	UserID string `json:"user_id"`
}

type impersonateResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Tenant      struct {
		Subdomain string `json:"subdomain"`
	} `json:"tenant"`
	ImpersonatedUser struct {
		Email string `json:"email"`
	} `json:"impersonated_user"`
}

func (a *API) handleImpersonate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "impersonation.API.handleImpersonate")
	defer span.End()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "unauthenticated")
		return
	}

	// The body is optional, an empty body means default target selection.
	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	result, err := a.service.Impersonate(ctx, principal.UserID, chi.URLParam(r, "tenant_id"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant or user not found")
		case errors.Is(err, ErrTargetNotInTenant):
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "target user not found in tenant")
		case errors.Is(err, ErrNoEligibleTarget):
			httptypes.WriteError(w, http.StatusUnprocessableEntity, httptypes.CodeUnprocessable, "tenant has no active user to impersonate")
		default:
			a.logger.Errorf("failed to impersonate tenant: %v", err)
			httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to impersonate tenant")
		}
		return
	}

	resp := impersonateResponse{
		AccessToken: result.AccessToken,
		ExpiresIn:   int(authentication.ImpersonationTokenTTL.Seconds()),
	}
	resp.Tenant.Subdomain = result.Tenant.Subdomain
	resp.ImpersonatedUser.Email = result.Target.Email

	httptypes.WriteJSON(w, http.StatusOK, resp)
}
