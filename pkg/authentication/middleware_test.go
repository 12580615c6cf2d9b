// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

func TestMiddleware_Authenticate(t *testing.T) {
	validClaims := &Claims{TenantID: "tenant-1", Role: "editor"}
	validClaims.Subject = "user-1"

	testCases := []struct {
		name           string
		authHeader     string
		withMachine    bool
		setupMocks     func(*MockTokenServiceInterface, *MockTokenVerifierInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedStatus int
		checkPrincipal func(*testing.T, Principal)
	}{
		{
			name:           "missing header",
			authHeader:     "",
			setupMocks:     func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			setupMocks:     func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid session token",
			authHeader: "Bearer valid-token",
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "valid-token").Return(validClaims, nil)
			},
			expectedStatus: http.StatusOK,
			checkPrincipal: func(t *testing.T, p Principal) {
				if p.UserID != "user-1" || p.TenantID != "tenant-1" || p.Role != "editor" {
					t.Errorf("unexpected principal: %+v", p)
				}
			},
		},
		{
			name:       "impersonation token carries target identity",
			authHeader: "Bearer imp-token",
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				claims := &Claims{TenantID: "tenant-1", Role: "admin", Impersonation: true, ImpersonatorID: "superadmin-1"}
				claims.Subject = "user-1"
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "imp-token").Return(claims, nil)
			},
			expectedStatus: http.StatusOK,
			checkPrincipal: func(t *testing.T, p Principal) {
				if !p.Impersonation || p.ImpersonatorID != "superadmin-1" {
					t.Errorf("expected impersonation principal, got %+v", p)
				}
				if p.IsSuperAdmin {
					t.Error("impersonation principal must not be super admin")
				}
			},
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired-token",
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "expired-token").Return(nil, ErrExpiredToken)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure("", "token expired")
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed token",
			authHeader: "Bearer bad-token",
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "bad-token").Return(nil, ErrMalformedToken)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure("", "token malformed")
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "machine token accepted",
			authHeader:  "Bearer machine-token",
			withMachine: true,
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "machine-token").Return(nil, ErrMalformedToken)
				mockMachine.EXPECT().VerifyToken(gomock.Any(), "machine-token").Return("automation-client", nil)
			},
			expectedStatus: http.StatusOK,
			checkPrincipal: func(t *testing.T, p Principal) {
				if p.UserID != "automation-client" || !p.IsSuperAdmin {
					t.Errorf("expected machine super admin principal, got %+v", p)
				}
			},
		},
		{
			name:        "machine token rejected",
			authHeader:  "Bearer bad-machine-token",
			withMachine: true,
			setupMocks: func(mockTokens *MockTokenServiceInterface, mockMachine *MockTokenVerifierInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockTokens.EXPECT().VerifyToken(gomock.Any(), "bad-machine-token").Return(nil, ErrMalformedToken)
				mockMachine.EXPECT().VerifyToken(gomock.Any(), "bad-machine-token").Return("", errors.New("bad audience"))
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).Times(2)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure("", "token malformed")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokens := NewMockTokenServiceInterface(ctrl)
			mockMachine := NewMockTokenVerifierInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.Authenticate").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockTokens, mockMachine, mockLogger, mockSecurity)

			var machine TokenVerifierInterface
			if tc.withMachine {
				machine = mockMachine
			}

			middleware := NewMiddleware(mockTokens, machine, mockTracer, mockMonitor, mockLogger)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.checkPrincipal != nil {
					p, ok := PrincipalFromContext(r.Context())
					if !ok {
						t.Fatal("expected principal in context")
					}
					tc.checkPrincipal(t, p)
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate()(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMiddleware_RequireSuperAdmin(t *testing.T) {
	testCases := []struct {
		name           string
		principal      *Principal
		setupMocks     func(*MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedStatus int
	}{
		{
			name:           "super admin passes",
			principal:      &Principal{UserID: "admin-1", IsSuperAdmin: true},
			setupMocks:     func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "tenant member denied",
			principal: &Principal{UserID: "user-1", TenantID: "tenant-1", Role: "admin"},
			setupMocks: func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("user-1", "superadmin_access")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			// An impersonation principal is the target user, not the issuing
			// super admin, and must not reach privileged endpoints.
			name:      "impersonation principal denied",
			principal: &Principal{UserID: "user-1", TenantID: "tenant-1", Role: "admin", Impersonation: true, ImpersonatorID: "superadmin-1"},
			setupMocks: func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("user-1", "superadmin_access")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no principal",
			principal:      nil,
			setupMocks:     func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokens := NewMockTokenServiceInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.RequireSuperAdmin").DoAndReturn(
				func(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)
			tc.setupMocks(mockLogger, mockSecurity)

			middleware := NewMiddleware(mockTokens, nil, mockTracer, mockMonitor, mockLogger)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v0/superadmin/tenants", nil)
			if tc.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tc.principal))
			}
			rr := httptest.NewRecorder()

			middleware.RequireSuperAdmin()(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}
