// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/access-control-service/internal/authorization"
	httptypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
)

type API struct {
	service  ServiceInterface
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/v0/superadmin/tenants", a.handleCreate)
	mux.Get("/api/v0/superadmin/tenants", a.handleList)
	mux.Get("/api/v0/superadmin/tenants/{id}", a.handleGet)
	mux.Patch("/api/v0/superadmin/tenants/{id}", a.handleRename)
	mux.Post("/api/v0/superadmin/tenants/{id}/suspend", a.handleSuspend)
	mux.Get("/api/v0/superadmin/tenants/{id}/users", a.handleListUsers)
	mux.Post("/api/v0/superadmin/tenants/{id}/unsuspend", a.handleUnsuspend)
	mux.Post("/api/v0/superadmin/tenants/{id}/users", a.handleCreateUser)
	mux.Patch("/api/v0/superadmin/tenants/{id}/users/{user_id}", a.handleUpdateUserRole)
}

type createTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required,hostname_rfc1123"`
}

type createUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type renameTenantRequest struct {
	Name string `json:"name" validate:"required"`
}

type tenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type tenantStatusBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type tenantStatusResponse struct {
	Tenant tenantStatusBody `json:"tenant"`
}

type userResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleCreate")
	defer span.End()

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, err.Error())
		return
	}

	t, err := a.service.CreateTenant(ctx, req.Name, req.Subdomain)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			httptypes.WriteError(w, http.StatusConflict, httptypes.CodeConflict, "subdomain is already taken")
			return
		}
		a.logger.Errorf("failed to create tenant: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to create tenant")
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, toTenantResponse(t))
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleList")
	defer span.End()

	tenants, err := a.service.ListTenants(ctx)
	if err != nil {
		a.logger.Errorf("failed to list tenants: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to list tenants")
		return
	}

	resp := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp = append(resp, toTenantResponse(t))
	}

	httptypes.WriteJSON(w, http.StatusOK, map[string]any{"tenants": resp})
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleGet")
	defer span.End()

	t, err := a.service.GetTenant(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant not found")
			return
		}
		a.logger.Errorf("failed to get tenant: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to get tenant")
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

func (a *API) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleRename")
	defer span.End()

	var req renameTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, err.Error())
		return
	}

	t, err := a.service.RenameTenant(ctx, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant not found")
			return
		}
		a.logger.Errorf("failed to rename tenant: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to rename tenant")
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

func (a *API) handleSuspend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleSuspend")
	defer span.End()

	a.setStatus(ctx, w, chi.URLParam(r, "id"), a.service.Suspend)
}

func (a *API) handleUnsuspend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleUnsuspend")
	defer span.End()

	a.setStatus(ctx, w, chi.URLParam(r, "id"), a.service.Unsuspend)
}

func (a *API) setStatus(ctx context.Context, w http.ResponseWriter, tenantID string, op func(ctx context.Context, actorID, tenantID string) (*types.Tenant, error)) {
	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "unauthenticated")
		return
	}

	t, err := op(ctx, principal.UserID, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant not found")
			return
		}
		a.logger.Errorf("failed to change tenant status: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to change tenant status")
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, tenantStatusResponse{
		Tenant: tenantStatusBody{ID: t.ID, Status: string(t.Status)},
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleListUsers")
	defer span.End()

	if _, err := a.service.GetTenant(ctx, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant not found")
			return
		}
		a.logger.Errorf("failed to get tenant: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to get tenant")
		return
	}

	users, err := a.service.ListUsers(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.logger.Errorf("failed to list users: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to list users")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	httptypes.WriteJSON(w, http.StatusOK, map[string]any{"users": resp})
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleCreateUser")
	defer span.End()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, err.Error())
		return
	}

	u, err := a.service.CreateUser(ctx, chi.URLParam(r, "id"), req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, authorization.ErrUnknownRole):
			httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "unknown role")
		case errors.Is(err, storage.ErrNotFound):
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "tenant not found")
		case errors.Is(err, storage.ErrDuplicateKey):
			httptypes.WriteError(w, http.StatusConflict, httptypes.CodeConflict, "email is already registered")
		default:
			a.logger.Errorf("failed to create user: %v", err)
			httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to create user")
		}
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.handleUpdateUserRole")
	defer span.End()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "unauthenticated")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, err.Error())
		return
	}

	u, err := a.service.UpdateUserRole(ctx, principal.UserID, chi.URLParam(r, "id"), chi.URLParam(r, "user_id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, authorization.ErrUnknownRole):
			httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "unknown role")
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, ErrWrongTenant):
			httptypes.WriteError(w, http.StatusNotFound, httptypes.CodeNotFound, "user not found in tenant")
		default:
			a.logger.Errorf("failed to update user role: %v", err)
			httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to update user role")
		}
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func toTenantResponse(t *types.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func toUserResponse(u *types.User) userResponse {
	return userResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Role:      u.Role,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}
