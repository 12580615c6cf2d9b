// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/types"
)

func TestRegistrationWebhook(t *testing.T) {
	const secret = "webhook-secret"

	tenant := &types.Tenant{ID: "tenant-1", Subdomain: "acme"}
	admin := &types.User{ID: "user-1", Email: "owner@acme.test", Role: "admin"}

	testCases := []struct {
		name           string
		token          string
		payload        string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedStatus int
	}{
		{
			name:    "success",
			token:   secret,
			payload: `{"email": "owner@acme.test", "tenant_name": "Acme", "subdomain": "acme"}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().HandleRegistration(gomock.Any(), "owner@acme.test", "Acme", "acme").Return(tenant, admin, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "wrong token",
			token:   "wrong",
			payload: `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure("", "webhook token mismatch")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "missing token",
			token:   "",
			payload: `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure("", "webhook token mismatch")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid JSON",
			token:          secret,
			payload:        `{"email": `,
			setupMocks:     func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "email already registered",
			token:   secret,
			payload: `{"email": "owner@acme.test"}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().HandleRegistration(gomock.Any(), "owner@acme.test", "", "").Return(nil, nil, ErrAlreadyRegistered)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:    "provisioning failure",
			token:   secret,
			payload: `{"email": "owner@acme.test"}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().HandleRegistration(gomock.Any(), "owner@acme.test", "", "").Return(nil, nil, errors.New("db error"))
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			tc.setupMocks(mockService, mockLogger, mockSecurity)

			mux := chi.NewMux()
			NewAPI(mockService, secret, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/webhooks/registration", strings.NewReader(tc.payload))
			if tc.token != "" {
				req.Header.Set(SecretHeader, tc.token)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}

			if tc.expectedStatus == http.StatusCreated {
				var resp registrationResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if resp.Tenant.ID != "tenant-1" || resp.Admin.Email != "owner@acme.test" {
					t.Errorf("unexpected response: %+v", resp)
				}
			}
		})
	}
}
