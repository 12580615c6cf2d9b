// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
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
	mux.Get("/api/v0/superadmin/audit-logs", a.handleList)
}

type entryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actor_id"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type listResponse struct {
	Entries []entryResponse `json:"entries"`
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "audit.API.handleList")
	defer span.End()

	f := storage.AuditFilter{
		Action:   r.URL.Query().Get("action"),
		TenantID: r.URL.Query().Get("tenant_id"),
		ActorID:  r.URL.Query().Get("actor_id"),
	}

	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "since must be an RFC3339 timestamp")
			return
		}
		f.Since = t
	}

	if v := r.URL.Query().Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "until must be an RFC3339 timestamp")
			return
		}
		f.Until = t
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n < 1 {
			httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	entries, err := a.service.Query(ctx, f)
	if err != nil {
		a.logger.Errorf("failed to list audit entries: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to list audit entries")
		return
	}

	resp := listResponse{Entries: make([]entryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, auditEntryResponse(e))
	}

	httptypes.WriteJSON(w, http.StatusOK, resp)
}

func auditEntryResponse(e *types.AuditEntry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Action:    e.Action,
		ActorID:   e.ActorID,
		TenantID:  e.TenantID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}
