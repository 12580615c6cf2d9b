// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package impersonation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package impersonation -destination ./mock_impersonation.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package impersonation -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package impersonation -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package impersonation -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_Impersonate(t *testing.T) {
	superAdminID := "admin-1"
	tenantID := "tenant-1"
	tenant := &types.Tenant{ID: tenantID, Subdomain: "acme", Status: types.TenantActive}

	activeAdmin := &types.User{ID: "user-2", TenantID: tenantID, Email: "admin@acme.test", Role: "admin", Status: types.UserActive}
	activeViewer := &types.User{ID: "user-1", TenantID: tenantID, Email: "viewer@acme.test", Role: "viewer", Status: types.UserActive}
	pendingAdmin := &types.User{ID: "user-3", TenantID: tenantID, Email: "pending@acme.test", Role: "admin", Status: types.UserPending}

	dbErr := errors.New("db error")

	testCases := []struct {
		name           string
		targetUserID   string
		setupMocks     func(*MockStorageInterface, *MockTokenIssuerInterface, *MockAuditRecorderInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedTarget string
		expectedErr    error
	}{
		{
			name:         "explicit target",
			targetUserID: "user-1",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(activeViewer, nil)
				mockTokens.EXPECT().IssueImpersonationToken(gomock.Any(), superAdminID, activeViewer).Return("token-1", nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantImpersonated, superAdminID, tenantID, map[string]any{
					"target_user_id": "user-1",
					"target_email":   "viewer@acme.test",
					"target_role":    "viewer",
				}).Return(&types.AuditEntry{}, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().ImpersonationIssued(superAdminID, tenantID, "user-1")
			},
			expectedTarget: "user-1",
		},
		{
			// Without an explicit target the earliest active admin wins even
			// when older non-admin users exist.
			name: "defaults to earliest active admin",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().ListUsersByTenantID(gomock.Any(), tenantID).Return([]*types.User{activeViewer, activeAdmin}, nil)
				mockTokens.EXPECT().IssueImpersonationToken(gomock.Any(), superAdminID, activeAdmin).Return("token-2", nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantImpersonated, superAdminID, tenantID, gomock.Any()).Return(&types.AuditEntry{}, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().ImpersonationIssued(superAdminID, tenantID, "user-2")
			},
			expectedTarget: "user-2",
		},
		{
			// Inactive admins are skipped, the earliest active user of any
			// role is the fallback.
			name: "falls back to earliest active user",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().ListUsersByTenantID(gomock.Any(), tenantID).Return([]*types.User{pendingAdmin, activeViewer}, nil)
				mockTokens.EXPECT().IssueImpersonationToken(gomock.Any(), superAdminID, activeViewer).Return("token-3", nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantImpersonated, superAdminID, tenantID, gomock.Any()).Return(&types.AuditEntry{}, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().ImpersonationIssued(superAdminID, tenantID, "user-1")
			},
			expectedTarget: "user-1",
		},
		{
			name: "no eligible target",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().ListUsersByTenantID(gomock.Any(), tenantID).Return([]*types.User{pendingAdmin}, nil)
			},
			expectedErr: ErrNoEligibleTarget,
		},
		{
			name:         "explicit target in another tenant",
			targetUserID: "user-1",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(&types.User{ID: "user-1", TenantID: "tenant-9", Status: types.UserActive}, nil)
			},
			expectedErr: ErrTargetNotInTenant,
		},
		{
			name:         "explicit target inactive",
			targetUserID: "user-3",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().GetUserByID(gomock.Any(), "user-3").Return(pendingAdmin, nil)
			},
			expectedErr: ErrNoEligibleTarget,
		},
		{
			name: "tenant not found",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
		{
			// No audit entry, no token. The write happens before the token is
			// returned to the caller.
			name: "audit failure withholds token",
			setupMocks: func(mockStorage *MockStorageInterface, mockTokens *MockTokenIssuerInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(tenant, nil)
				mockStorage.EXPECT().ListUsersByTenantID(gomock.Any(), tenantID).Return([]*types.User{activeAdmin}, nil)
				mockTokens.EXPECT().IssueImpersonationToken(gomock.Any(), superAdminID, activeAdmin).Return("token-4", nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantImpersonated, superAdminID, tenantID, gomock.Any()).Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTokens := NewMockTokenIssuerInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			s := NewService(mockStorage, mockTokens, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "impersonation.Service.Impersonate").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockTokens, mockAudit, mockLogger, mockSecurity)

			result, err := s.Impersonate(context.Background(), superAdminID, tenantID, tc.targetUserID)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				if result != nil {
					t.Error("expected no result on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Target.ID != tc.expectedTarget {
				t.Errorf("expected target %s, got %s", tc.expectedTarget, result.Target.ID)
			}
			if result.AccessToken == "" {
				t.Error("expected an access token")
			}
		})
	}
}
