// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tenant.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_CreateTenant(t *testing.T) {
	expected := &types.Tenant{ID: "tenant-1", Name: "Acme", Subdomain: "acme", Status: types.TenantActive}
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().CreateTenant(gomock.Any(), &types.Tenant{Name: "Acme", Subdomain: "acme"}).Return(expected, nil)
			},
			expectedErr: nil,
		},
		{
			name: "duplicate subdomain",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedErr: storage.ErrDuplicateKey,
		},
		{
			name: "storage error",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.CreateTenant").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage)

			tenant, err := s.CreateTenant(context.Background(), "Acme", "acme")

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tenant.ID != expected.ID {
				t.Errorf("expected tenant %s, got %s", expected.ID, tenant.ID)
			}
		})
	}
}

func TestService_Suspend(t *testing.T) {
	tenantID := "tenant-1"
	actorID := "admin-1"
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface, *MockAuditRecorderInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID, Status: types.TenantActive}, nil)
				mockStorage.EXPECT().SetTenantStatus(gomock.Any(), tenantID, types.TenantSuspended).Return(&types.Tenant{ID: tenantID, Status: types.TenantSuspended}, nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantSuspended, actorID, tenantID, map[string]any{
					"previous_status": "active",
					"status":          "suspended",
				}).Return(&types.AuditEntry{}, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().TenantStatusChanged(actorID, tenantID, "suspended")
			},
			expectedErr: nil,
		},
		{
			// Redundant suspends succeed and still leave an audit entry.
			name: "already suspended",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID, Status: types.TenantSuspended}, nil)
				mockStorage.EXPECT().SetTenantStatus(gomock.Any(), tenantID, types.TenantSuspended).Return(&types.Tenant{ID: tenantID, Status: types.TenantSuspended}, nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantSuspended, actorID, tenantID, map[string]any{
					"previous_status": "suspended",
					"status":          "suspended",
				}).Return(&types.AuditEntry{}, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().TenantStatusChanged(actorID, tenantID, "suspended")
			},
			expectedErr: nil,
		},
		{
			name: "tenant not found",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
		{
			// An unwritable audit log fails the whole operation.
			name: "audit failure",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID, Status: types.TenantActive}, nil)
				mockStorage.EXPECT().SetTenantStatus(gomock.Any(), tenantID, types.TenantSuspended).Return(&types.Tenant{ID: tenantID, Status: types.TenantSuspended}, nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantSuspended, actorID, tenantID, gomock.Any()).Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.Suspend").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockAudit, mockLogger, mockSecurity)

			tenant, err := s.Suspend(context.Background(), actorID, tenantID)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tenant.Status != types.TenantSuspended {
				t.Errorf("expected status suspended, got %s", tenant.Status)
			}
		})
	}
}

func TestService_Unsuspend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tenantID := "tenant-1"
	actorID := "admin-1"

	mockStorage := NewMockStorageInterface(ctrl)
	mockAudit := NewMockAuditRecorderInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.Unsuspend").Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID, Status: types.TenantSuspended}, nil)
	mockStorage.EXPECT().SetTenantStatus(gomock.Any(), tenantID, types.TenantActive).Return(&types.Tenant{ID: tenantID, Status: types.TenantActive}, nil)
	mockAudit.EXPECT().Record(gomock.Any(), types.AuditTenantUnsuspended, actorID, tenantID, map[string]any{
		"previous_status": "suspended",
		"status":          "active",
	}).Return(&types.AuditEntry{}, nil)
	mockLogger.EXPECT().Security().Return(mockSecurity)
	mockSecurity.EXPECT().TenantStatusChanged(actorID, tenantID, "active")

	tenant, err := s.Unsuspend(context.Background(), actorID, tenantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.Status != types.TenantActive {
		t.Errorf("expected status active, got %s", tenant.Status)
	}
}

func TestService_CreateUser(t *testing.T) {
	tenantID := "tenant-1"

	testCases := []struct {
		name        string
		role        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			role: "editor",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID}, nil)
				mockStorage.EXPECT().CreateUser(gomock.Any(), &types.User{
					TenantID: tenantID,
					Email:    "user@example.com",
					Role:     "editor",
					Status:   types.UserActive,
				}).Return(&types.User{ID: "user-1", TenantID: tenantID, Role: "editor"}, nil)
			},
			expectedErr: nil,
		},
		{
			name:        "unknown role",
			role:        "owner",
			setupMocks:  func(mockStorage *MockStorageInterface) {},
			expectedErr: authorization.ErrUnknownRole,
		},
		{
			name: "tenant not found",
			role: "viewer",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.CreateUser").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage)

			user, err := s.CreateUser(context.Background(), tenantID, "user@example.com", tc.role)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != tc.role {
				t.Errorf("expected role %s, got %s", tc.role, user.Role)
			}
		})
	}
}

func TestService_UpdateUserRole(t *testing.T) {
	tenantID := "tenant-1"
	userID := "user-1"
	actorID := "admin-1"

	testCases := []struct {
		name        string
		role        string
		setupMocks  func(*MockStorageInterface, *MockAuditRecorderInterface)
		expectedErr error
	}{
		{
			name: "success",
			role: "admin",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface) {
				mockStorage.EXPECT().GetUserByID(gomock.Any(), userID).Return(&types.User{ID: userID, TenantID: tenantID, Role: "viewer"}, nil)
				mockStorage.EXPECT().UpdateUserRole(gomock.Any(), tenantID, userID, "admin").Return(nil)
				mockAudit.EXPECT().Record(gomock.Any(), types.AuditUserRoleChanged, actorID, tenantID, map[string]any{
					"user_id":  userID,
					"old_role": "viewer",
					"new_role": "admin",
				}).Return(&types.AuditEntry{}, nil)
			},
			expectedErr: nil,
		},
		{
			name:        "unknown role",
			role:        "root",
			setupMocks:  func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface) {},
			expectedErr: authorization.ErrUnknownRole,
		},
		{
			name: "user in another tenant",
			role: "admin",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface) {
				mockStorage.EXPECT().GetUserByID(gomock.Any(), userID).Return(&types.User{ID: userID, TenantID: "tenant-2", Role: "viewer"}, nil)
			},
			expectedErr: ErrWrongTenant,
		},
		{
			name: "user not found",
			role: "admin",
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditRecorderInterface) {
				mockStorage.EXPECT().GetUserByID(gomock.Any(), userID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.UpdateUserRole").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockAudit)

			user, err := s.UpdateUserRole(context.Background(), actorID, tenantID, userID, tc.role)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != tc.role {
				t.Errorf("expected role %s on returned user, got %s", tc.role, user.Role)
			}
		})
	}
}

func TestService_RenameTenant(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().UpdateTenantName(gomock.Any(), "tenant-1", "Acme Renamed").Return(nil)
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(&types.Tenant{
					ID:        "tenant-1",
					Name:      "Acme Renamed",
					Subdomain: "acme",
					Status:    types.TenantActive,
				}, nil)
			},
		},
		{
			name: "tenant not found",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().UpdateTenantName(gomock.Any(), "tenant-1", "Acme Renamed").Return(storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			s := NewService(mockStorage, mockAudit, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.RenameTenant").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage)

			tenant, err := s.RenameTenant(context.Background(), "tenant-1", "Acme Renamed")

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tenant.Name != "Acme Renamed" || tenant.Subdomain != "acme" {
				t.Errorf("unexpected tenant after rename: %+v", tenant)
			}
		})
	}
}
