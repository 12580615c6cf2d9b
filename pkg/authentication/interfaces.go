// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/access-control-service/internal/types"
)

type ProviderInterface interface {
	// Verifier returns the token verifier associated with the specified OIDC issuer
	Verifier(*oidc.Config) *oidc.IDTokenVerifier
}

// TokenServiceInterface issues and validates first-party bearer tokens.
type TokenServiceInterface interface {
	IssueSessionToken(ctx context.Context, user *types.User, ttl time.Duration) (string, error)
	IssueImpersonationToken(ctx context.Context, superAdminID string, target *types.User) (string, error)
	VerifyToken(ctx context.Context, raw string) (*Claims, error)
}

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw JWT string and validates authorization claims
	// Returns the subject (client ID) if the token is valid and authorized, otherwise an error
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}
