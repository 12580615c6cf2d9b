// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/access-control-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_authentication.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

const testSecret = "test-signing-secret"

func newTestTokenService(t *testing.T, spanNames ...string) *TokenService {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	for _, name := range spanNames {
		mockTracer.EXPECT().Start(gomock.Any(), name).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	}

	return NewTokenService(testSecret, 8*time.Hour, mockTracer, mockMonitor, mockLogger)
}

func TestTokenService_SessionRoundTrip(t *testing.T) {
	s := newTestTokenService(t,
		"authentication.TokenService.IssueSessionToken",
		"authentication.TokenService.VerifyToken",
	)

	user := &types.User{ID: "user-1", TenantID: "tenant-1", Role: "editor"}

	raw, err := s.IssueSessionToken(context.Background(), user, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := s.VerifyToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("expected tenant-1, got %q", claims.TenantID)
	}
	if claims.Role != "editor" {
		t.Errorf("expected role editor, got %q", claims.Role)
	}
	if claims.Impersonation {
		t.Error("session token must not carry the impersonation flag")
	}
}

func TestTokenService_SuperAdminSessionToken(t *testing.T) {
	s := newTestTokenService(t,
		"authentication.TokenService.IssueSessionToken",
		"authentication.TokenService.VerifyToken",
	)

	user := &types.User{ID: "admin-1", IsSuperAdmin: true}

	raw, err := s.IssueSessionToken(context.Background(), user, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := s.VerifyToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.IsSuperAdmin {
		t.Error("expected super admin claim")
	}
	if claims.TenantID != "" {
		t.Errorf("super admin token must not be tenant scoped, got %q", claims.TenantID)
	}
}

func TestTokenService_ImpersonationToken(t *testing.T) {
	s := newTestTokenService(t,
		"authentication.TokenService.IssueImpersonationToken",
		"authentication.TokenService.VerifyToken",
	)

	target := &types.User{ID: "user-1", TenantID: "tenant-1", Role: "admin"}

	raw, err := s.IssueImpersonationToken(context.Background(), "superadmin-1", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := s.VerifyToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The token represents the target, the issuing admin only appears in the
	// impersonator claim.
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
	if !claims.Impersonation {
		t.Error("expected impersonation flag")
	}
	if claims.ImpersonatorID != "superadmin-1" {
		t.Errorf("expected impersonator superadmin-1, got %q", claims.ImpersonatorID)
	}
	if claims.IsSuperAdmin {
		t.Error("impersonation token must not grant super admin")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > ImpersonationTokenTTL || ttl < ImpersonationTokenTTL-time.Minute {
		t.Errorf("expected ttl close to %v, got %v", ImpersonationTokenTTL, ttl)
	}
}

func TestTokenService_VerifyToken_Failures(t *testing.T) {
	s := newTestTokenService(t,
		"authentication.TokenService.VerifyToken",
	)

	sign := func(claims Claims, secret string) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("failed to sign test token: %v", err)
		}
		return raw
	}

	validRegistered := func(sub string) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		}
	}

	expired := validRegistered("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute))

	wrongIssuer := validRegistered("user-1")
	wrongIssuer.Issuer = "someone-else"

	testCases := []struct {
		name        string
		raw         string
		expectedErr error
	}{
		{
			name:        "garbage",
			raw:         "not-a-jwt",
			expectedErr: ErrMalformedToken,
		},
		{
			name:        "expired",
			raw:         sign(Claims{RegisteredClaims: expired}, testSecret),
			expectedErr: ErrExpiredToken,
		},
		{
			name:        "wrong secret",
			raw:         sign(Claims{RegisteredClaims: validRegistered("user-1")}, "other-secret"),
			expectedErr: ErrMalformedToken,
		},
		{
			name:        "wrong issuer",
			raw:         sign(Claims{RegisteredClaims: wrongIssuer}, testSecret),
			expectedErr: ErrMalformedToken,
		},
		{
			name:        "missing subject",
			raw:         sign(Claims{RegisteredClaims: validRegistered("")}, testSecret),
			expectedErr: ErrMalformedToken,
		},
		{
			name:        "unknown role claim",
			raw:         sign(Claims{Role: "owner", RegisteredClaims: validRegistered("user-1")}, testSecret),
			expectedErr: ErrMalformedToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.VerifyToken(context.Background(), tc.raw)
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestTokenService_RejectsUnsignedTokens(t *testing.T) {
	s := newTestTokenService(t,
		"authentication.TokenService.VerifyToken",
	)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if _, err := s.VerifyToken(context.Background(), raw); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("expected ErrMalformedToken for alg=none, got %v", err)
	}
}
