// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canonical/access-control-service/internal/authorization"
	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

const (
	issuer = "access-control-service"

	// ImpersonationTokenTTL is fixed server-side. It is not a default: no
	// caller input can extend an impersonation window, a new impersonation
	// call is required once it elapses.
	ImpersonationTokenTTL = time.Hour
)

var (
	// ErrExpiredToken and ErrMalformedToken are logged distinctly server-side
	// but both surface to clients as a generic authentication failure.
	ErrExpiredToken   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")
)

// Claims are the signed contents of both session and impersonation tokens.
type Claims struct {
	TenantID       string `json:"tenant_id,omitempty"`
	Role           string `json:"role,omitempty"`
	IsSuperAdmin   bool   `json:"super_admin,omitempty"`
	Impersonation  bool   `json:"impersonation,omitempty"`
	ImpersonatorID string `json:"impersonator_id,omitempty"`
	jwt.RegisteredClaims
}

var _ TokenServiceInterface = (*TokenService)(nil)

// TokenService signs and validates bearer tokens. It is stateless, revocation
// happens only through expiry.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	method     jwt.SigningMethod
	parser     *jwt.Parser

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewTokenService(secret string, sessionTTL time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *TokenService {
	s := new(TokenService)

	s.secret = []byte(secret)
	s.sessionTTL = sessionTTL
	s.method = jwt.SigningMethodHS256
	s.parser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}

// IssueSessionToken signs a session token for the user. A non-positive ttl
// falls back to the configured session lifetime.
func (s *TokenService) IssueSessionToken(ctx context.Context, user *types.User, ttl time.Duration) (string, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.IssueSessionToken")
	defer span.End()

	if ttl <= 0 {
		ttl = s.sessionTTL
	}

	claims := Claims{
		TenantID:     user.TenantID,
		Role:         user.Role,
		IsSuperAdmin: user.IsSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return s.sign(claims)
}

// IssueImpersonationToken signs a token representing the target user with the
// fixed impersonation TTL. The issuing super admin is embedded for audit
// correlation. No credential of the target user is involved.
func (s *TokenService) IssueImpersonationToken(ctx context.Context, superAdminID string, target *types.User) (string, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.IssueImpersonationToken")
	defer span.End()

	claims := Claims{
		TenantID:       target.TenantID,
		Role:           target.Role,
		Impersonation:  true,
		ImpersonatorID: superAdminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   target.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ImpersonationTokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	return s.sign(claims)
}

// VerifyToken checks the signature and expiry and returns the claims.
// Expiry and structural failures are distinguished for server-side logging.
func (s *TokenService) VerifyToken(ctx context.Context, raw string) (*Claims, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.VerifyToken")
	defer span.End()

	var claims Claims
	token, err := s.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !token.Valid {
		return nil, ErrMalformedToken
	}

	if claims.Issuer != issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrMalformedToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrMalformedToken)
	}

	// Reject unknown roles at the boundary. Super-admin tokens are not
	// tenant-scoped and carry no role.
	if claims.Role != "" {
		if _, err := authorization.ParseRole(claims.Role); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	return &claims, nil
}

func (s *TokenService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(s.method, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
