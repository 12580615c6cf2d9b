// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_logger.go -source=../logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_monitor.go -source=../monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_tracing.go -source=../tracing/interfaces.go

func TestAuthorizer_CheckCapability(t *testing.T) {
	testCases := []struct {
		name        string
		role        string
		capability  Capability
		setupMocks  func(*MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name:       "granted",
			role:       "editor",
			capability: CapDocumentsDelete,
			setupMocks: func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
		},
		{
			name:       "denied",
			role:       "viewer",
			capability: CapDocumentsWrite,
			setupMocks: func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("viewer", "documents:write")
			},
			expectedErr: ErrForbidden,
		},
		{
			name:        "unknown role",
			role:        "owner",
			capability:  CapDocumentsRead,
			setupMocks:  func(mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {},
			expectedErr: ErrUnknownRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			a := NewAuthorizer(mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.CheckCapability").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockLogger, mockSecurity)

			err := a.CheckCapability(context.Background(), tc.role, tc.capability)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthorizer_Capabilities(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	a := NewAuthorizer(mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.Capabilities").Return(context.Background(), trace.SpanFromContext(context.Background()))

	caps, err := a.Capabilities(context.Background(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(caps) != 5 {
		t.Errorf("expected 5 capabilities for admin, got %d", len(caps))
	}
}
