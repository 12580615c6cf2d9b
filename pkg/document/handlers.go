// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package document

import (
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
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
	"github.com/canonical/access-control-service/pkg/tenant"
)

type API struct {
	service    ServiceInterface
	authorizer authorization.AuthorizerInterface
	validate   *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, authorizer authorization.AuthorizerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:    service,
		authorizer: authorizer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}

// RegisterEndpoints mounts the document routes on a tenant-scoped router,
// the tenant and principal are resolved by the enclosing middleware chain.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/documents", a.handleList)
	mux.Post("/api/v0/documents", a.handleCreate)
}

type createDocumentRequest struct {
	Title string `json:"title" validate:"required,max=512"`
}

type documentResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "document.API.handleList")
	defer span.End()

	t, _, ok := a.requireCapability(w, r, authorization.CapDocumentsRead)
	if !ok {
		return
	}

	docs, err := a.service.ListDocuments(ctx, t.ID)
	if err != nil {
		a.logger.Errorf("failed to list documents: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to list documents")
		return
	}

	resp := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, toDocumentResponse(d))
	}

	httptypes.WriteJSON(w, http.StatusOK, map[string]any{"documents": resp})
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "document.API.handleCreate")
	defer span.End()

	t, principal, ok := a.requireCapability(w, r, authorization.CapDocumentsWrite)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, err.Error())
		return
	}

	doc, err := a.service.CreateDocument(ctx, t.ID, req.Title, principal.UserID)
	if err != nil {
		a.logger.Errorf("failed to create document: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to create document")
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// requireCapability resolves the tenant and principal from the request
// context and applies the role capability check. Super admin principals are
// exempt, impersonation principals carry the target user's role and are
// checked like any member.
func (a *API) requireCapability(w http.ResponseWriter, r *http.Request, c authorization.Capability) (*types.Tenant, authentication.Principal, bool) {
	ctx := r.Context()

	t, ok := tenant.TenantFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "tenant not resolved")
		return nil, authentication.Principal{}, false
	}

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "unauthenticated")
		return nil, authentication.Principal{}, false
	}

	if principal.IsSuperAdmin {
		return t, principal, true
	}

	if err := a.authorizer.CheckCapability(ctx, principal.Role, c); err != nil {
		if errors.Is(err, authorization.ErrForbidden) || errors.Is(err, authorization.ErrUnknownRole) {
			httptypes.WriteError(w, http.StatusForbidden, httptypes.CodeForbidden, "insufficient role")
			return nil, authentication.Principal{}, false
		}
		a.logger.Errorf("capability check failed: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "internal error")
		return nil, authentication.Principal{}, false
	}

	return t, principal, true
}

func toDocumentResponse(d *types.Document) documentResponse {
	return documentResponse{
		ID:        d.ID,
		TenantID:  d.TenantID,
		Title:     d.Title,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
}
