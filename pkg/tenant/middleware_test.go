// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
)

func TestMiddleware_EnforceTenant(t *testing.T) {
	activeTenant := &types.Tenant{ID: "tenant-1", Subdomain: "acme", Status: types.TenantActive}
	suspendedTenant := &types.Tenant{ID: "tenant-1", Subdomain: "acme", Status: types.TenantSuspended}

	member := authentication.Principal{UserID: "user-1", TenantID: "tenant-1", Role: "editor"}
	outsider := authentication.Principal{UserID: "user-9", TenantID: "tenant-9", Role: "admin"}
	superAdmin := authentication.Principal{UserID: "admin-1", IsSuperAdmin: true}

	testCases := []struct {
		name           string
		principal      *authentication.Principal
		subdomain      string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "no principal",
			principal:      nil,
			subdomain:      "acme",
			setupMocks:     func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:      "resolves by subdomain header",
			principal: &member,
			subdomain: "acme",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenantBySubdomain(gomock.Any(), "acme").Return(activeTenant, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:      "resolves from token when header missing",
			principal: &member,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(activeTenant, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:      "unknown subdomain",
			principal: &member,
			subdomain: "missing",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenantBySubdomain(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			// The token verified, so a miss on its tenant id is a data
			// integrity problem, not a client error.
			name:      "token tenant missing from store",
			principal: &member,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(nil, storage.ErrNotFound)
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:      "cross tenant access denied",
			principal: &outsider,
			subdomain: "acme",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenantBySubdomain(gomock.Any(), "acme").Return(activeTenant, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("user-9", "cross_tenant_access")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "suspended tenant locks out members",
			principal: &member,
			subdomain: "acme",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenantBySubdomain(gomock.Any(), "acme").Return(suspendedTenant, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("user-1", "suspended_tenant_access")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "super admin bypasses suspension",
			principal: &superAdmin,
			subdomain: "acme",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockService.EXPECT().GetTenantBySubdomain(gomock.Any(), "acme").Return(suspendedTenant, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "no subdomain and no token tenant",
			principal:      &superAdmin,
			setupMocks:     func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Middleware.EnforceTenant").DoAndReturn(
				func(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)
			tc.setupMocks(mockService, mockLogger, mockSecurity)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if tenant, ok := TenantFromContext(r.Context()); !ok || tenant.ID != "tenant-1" {
					t.Error("expected resolved tenant in request context")
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v0/documents", nil)
			if tc.principal != nil {
				req = req.WithContext(authentication.WithPrincipal(req.Context(), *tc.principal))
			}
			if tc.subdomain != "" {
				req.Header.Set(SubdomainHeader, tc.subdomain)
			}

			rr := httptest.NewRecorder()
			NewMiddleware(mockService, mockTracer, mockMonitor, mockLogger).EnforceTenant()(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
			if nextCalled != tc.expectNext {
				t.Errorf("expected next called %v, got %v", tc.expectNext, nextCalled)
			}
		})
	}
}
