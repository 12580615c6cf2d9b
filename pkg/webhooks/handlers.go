// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/access-control-service/internal/http/types"
	"github.com/canonical/access-control-service/internal/logging"
)

// SecretHeader authenticates webhook callers. The signup flow is the only
// expected caller and shares one secret with this service.
const SecretHeader = "X-Webhook-Token"

type API struct {
	service ServiceInterface
	secret  string
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, secret string, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		secret:  secret,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/v0/webhooks/registration", a.registration)
}

type registrationRequest struct {
	Email      string `json:"email"`
	TenantName string `json:"tenant_name"`
	Subdomain  string `json:"subdomain"`
}

type registrationResponse struct {
	Tenant struct {
		ID        string `json:"id"`
		Subdomain string `json:"subdomain"`
	} `json:"tenant"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SecretHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.secret)) != 1 {
		a.logger.Security().AuthnFailure("", "webhook token mismatch")
		httptypes.WriteError(w, http.StatusUnauthorized, httptypes.CodeUnauthenticated, "invalid webhook token")
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteError(w, http.StatusBadRequest, httptypes.CodeValidation, "invalid JSON body")
		return
	}

	tenant, admin, err := a.service.HandleRegistration(r.Context(), req.Email, req.TenantName, req.Subdomain)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			httptypes.WriteError(w, http.StatusConflict, httptypes.CodeConflict, "email is already registered")
			return
		}
		a.logger.Errorf("registration webhook failed: %v", err)
		httptypes.WriteError(w, http.StatusInternalServerError, httptypes.CodeInternal, "failed to provision tenant")
		return
	}

	resp := registrationResponse{}
	resp.Tenant.ID = tenant.ID
	resp.Tenant.Subdomain = tenant.Subdomain
	resp.Admin.ID = admin.ID
	resp.Admin.Email = admin.Email

	httptypes.WriteJSON(w, http.StatusCreated, resp)
}
