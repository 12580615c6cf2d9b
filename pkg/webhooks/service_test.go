// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_webhooks.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_HandleRegistration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().GetUserByEmail(gomock.Any(), "jane.doe").Return(nil, storage.ErrNotFound)
	mockStorage.EXPECT().CreateTenant(gomock.Any(), &types.Tenant{
		Name:      "jane.doe's Org",
		Subdomain: "jane-doe",
	}).DoAndReturn(func(ctx context.Context, in *types.Tenant) (*types.Tenant, error) {
		out := *in
		out.ID = "tenant-1"
		return &out, nil
	})
	mockStorage.EXPECT().CreateUser(gomock.Any(), &types.User{
		TenantID: "tenant-1",
		Email:    "jane.doe",
		Role:     "admin",
		Status:   types.UserActive,
	}).DoAndReturn(func(ctx context.Context, in *types.User) (*types.User, error) {
		out := *in
		out.ID = "user-1"
		return &out, nil
	})
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())

	tenant, admin, err := s.HandleRegistration(context.Background(), "jane.doe", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.Subdomain != "jane-doe" {
		t.Errorf("expected derived subdomain jane-doe, got %q", tenant.Subdomain)
	}
	if admin.Role != "admin" {
		t.Errorf("first user must be tenant admin, got role %q", admin.Role)
	}
}

func TestService_HandleRegistration_SubdomainCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().GetUserByEmail(gomock.Any(), "owner@acme.test").Return(nil, storage.ErrNotFound)

	first := mockStorage.EXPECT().CreateTenant(gomock.Any(), &types.Tenant{
		Name:      "Acme",
		Subdomain: "acme",
	}).Return(nil, storage.ErrDuplicateKey)

	mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).After(first).DoAndReturn(
		func(ctx context.Context, in *types.Tenant) (*types.Tenant, error) {
			if !strings.HasPrefix(in.Subdomain, "acme-") || len(in.Subdomain) <= len("acme-") {
				t.Errorf("expected suffixed subdomain on retry, got %q", in.Subdomain)
			}
			out := *in
			out.ID = "tenant-1"
			return &out, nil
		},
	)
	mockStorage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, in *types.User) (*types.User, error) {
			out := *in
			out.ID = "user-1"
			return &out, nil
		},
	)
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())

	tenant, _, err := s.HandleRegistration(context.Background(), "owner@acme.test", "Acme", "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.ID != "tenant-1" {
		t.Errorf("expected tenant-1, got %q", tenant.ID)
	}
}

func TestService_HandleRegistration_MissingEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").Return(context.Background(), trace.SpanFromContext(context.Background()))

	if _, _, err := s.HandleRegistration(context.Background(), "", "", ""); err == nil {
		t.Error("expected an error for a missing email")
	}
}

func TestService_HandleRegistration_AlreadyRegistered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().GetUserByEmail(gomock.Any(), "owner@acme.test").Return(&types.User{ID: "user-1", Email: "owner@acme.test"}, nil)

	_, _, err := s.HandleRegistration(context.Background(), "owner@acme.test", "Acme", "acme")
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestSubdomainFromEmail(t *testing.T) {
	testCases := []struct {
		email    string
		expected string
	}{
		{"jane.doe@example.com", "jane-doe"},
		{"JANE@example.com", "jane"},
		{"j_d-x@example.com", "j-d-x"},
		{"a+b@example.com", "ab"},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			if got := subdomainFromEmail(tc.email); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestSubdomainFromEmail_Degenerate(t *testing.T) {
	// Nothing usable in the local part, a random label is generated.
	got := subdomainFromEmail("+++@example.com")
	if !strings.HasPrefix(got, "tenant-") {
		t.Errorf("expected generated tenant- label, got %q", got)
	}
}
