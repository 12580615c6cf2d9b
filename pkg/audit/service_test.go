// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_audit.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_Record(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name       string
		action     string
		setupMocks func(*MockStorageInterface, *MockLoggerInterface)
		expectErr  bool
	}{
		{
			name:   "success",
			action: types.AuditTenantSuspended,
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface) {
				mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), &types.AuditEntry{
					Action:   types.AuditTenantSuspended,
					ActorID:  "admin-1",
					TenantID: "tenant-1",
					Metadata: map[string]any{"status": "suspended"},
				}).Return(&types.AuditEntry{ID: "entry-1"}, nil)
			},
		},
		{
			name:       "empty action",
			action:     "",
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface) {},
			expectErr:  true,
		},
		{
			name:   "storage error",
			action: types.AuditTenantSuspended,
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface) {
				mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), gomock.Any()).Return(nil, dbErr)
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "audit.Service.Record").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockLogger)

			entry, err := s.Record(context.Background(), tc.action, "admin-1", "tenant-1", map[string]any{"status": "suspended"})

			if tc.expectErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry.ID != "entry-1" {
				t.Errorf("expected entry-1, got %s", entry.ID)
			}
		})
	}
}

func TestService_Query(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

	f := storage.AuditFilter{TenantID: "tenant-1", Action: types.AuditTenantSuspended}
	expected := []*types.AuditEntry{{ID: "entry-1"}, {ID: "entry-2"}}

	mockTracer.EXPECT().Start(gomock.Any(), "audit.Service.Query").Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().ListAuditEntries(gomock.Any(), f).Return(expected, nil)

	entries, err := s.Query(context.Background(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}
