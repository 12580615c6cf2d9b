// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package document

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
	"github.com/canonical/access-control-service/pkg/tenant"
)

//go:generate mockgen -build_flags=--mod=mod -package document -destination ./mock_document.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package document -destination ./mock_authorization.go -source=../../internal/authorization/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package document -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package document -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package document -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestHandleListDocuments(t *testing.T) {
	activeTenant := &types.Tenant{ID: "tenant-1", Subdomain: "acme", Status: types.TenantActive}
	viewer := authentication.Principal{UserID: "user-1", TenantID: "tenant-1", Role: "viewer"}
	superAdmin := authentication.Principal{UserID: "admin-1", IsSuperAdmin: true}

	testCases := []struct {
		name           string
		principal      *authentication.Principal
		withTenant     bool
		setupMocks     func(*MockServiceInterface, *MockAuthorizerInterface)
		expectedStatus int
	}{
		{
			name:       "viewer can read",
			principal:  &viewer,
			withTenant: true,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface) {
				mockAuthorizer.EXPECT().CheckCapability(gomock.Any(), "viewer", authorization.CapDocumentsRead).Return(nil)
				mockService.EXPECT().ListDocuments(gomock.Any(), "tenant-1").Return([]*types.Document{
					{ID: "doc-1", TenantID: "tenant-1", Title: "Q3 report"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "super admin bypasses capability check",
			principal:  &superAdmin,
			withTenant: true,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface) {
				mockService.EXPECT().ListDocuments(gomock.Any(), "tenant-1").Return([]*types.Document{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "unknown role is denied not erred",
			principal:  &authentication.Principal{UserID: "user-2", TenantID: "tenant-1", Role: "stale-role"},
			withTenant: true,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface) {
				mockAuthorizer.EXPECT().CheckCapability(gomock.Any(), "stale-role", authorization.CapDocumentsRead).Return(authorization.ErrUnknownRole)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "tenant not resolved",
			principal:      &viewer,
			withTenant:     false,
			setupMocks:     func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface) {},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "document.API.handleList").DoAndReturn(
				func(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)
			tc.setupMocks(mockService, mockAuthorizer)

			mux := chi.NewMux()
			NewAPI(mockService, mockAuthorizer, mockTracer, mockMonitor, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/documents", nil)
			ctx := authentication.WithPrincipal(req.Context(), *tc.principal)
			if tc.withTenant {
				ctx = tenant.WithTenant(ctx, activeTenant)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req.WithContext(ctx))

			if rr.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleCreateDocument(t *testing.T) {
	activeTenant := &types.Tenant{ID: "tenant-1", Subdomain: "acme", Status: types.TenantActive}
	contributor := authentication.Principal{UserID: "user-1", TenantID: "tenant-1", Role: "contributor"}
	viewer := authentication.Principal{UserID: "user-2", TenantID: "tenant-1", Role: "viewer"}

	testCases := []struct {
		name           string
		principal      authentication.Principal
		payload        string
		setupMocks     func(*MockServiceInterface, *MockAuthorizerInterface, *MockLoggerInterface)
		expectedStatus int
	}{
		{
			name:      "contributor can write",
			principal: contributor,
			payload:   `{"title": "Q3 report"}`,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface, mockLogger *MockLoggerInterface) {
				mockAuthorizer.EXPECT().CheckCapability(gomock.Any(), "contributor", authorization.CapDocumentsWrite).Return(nil)
				mockService.EXPECT().CreateDocument(gomock.Any(), "tenant-1", "Q3 report", "user-1").
					Return(&types.Document{ID: "doc-1", TenantID: "tenant-1", Title: "Q3 report", CreatedBy: "user-1"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "viewer cannot write",
			principal: viewer,
			payload:   `{"title": "Q3 report"}`,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface, mockLogger *MockLoggerInterface) {
				mockAuthorizer.EXPECT().CheckCapability(gomock.Any(), "viewer", authorization.CapDocumentsWrite).Return(authorization.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "missing title",
			principal: contributor,
			payload:   `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockAuthorizer *MockAuthorizerInterface, mockLogger *MockLoggerInterface) {
				mockAuthorizer.EXPECT().CheckCapability(gomock.Any(), "contributor", authorization.CapDocumentsWrite).Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "document.API.handleCreate").DoAndReturn(
				func(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)
			tc.setupMocks(mockService, mockAuthorizer, mockLogger)

			mux := chi.NewMux()
			NewAPI(mockService, mockAuthorizer, mockTracer, mockMonitor, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/documents", strings.NewReader(tc.payload))
			ctx := tenant.WithTenant(authentication.WithPrincipal(req.Context(), tc.principal), activeTenant)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req.WithContext(ctx))

			if rr.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}

			if tc.expectedStatus == http.StatusCreated {
				var doc struct {
					ID        string `json:"id"`
					CreatedBy string `json:"created_by"`
				}
				if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if doc.CreatedBy != "user-1" {
					t.Errorf("expected created_by user-1, got %q", doc.CreatedBy)
				}
			}
		})
	}
}
