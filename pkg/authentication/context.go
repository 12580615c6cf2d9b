// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

// Principal is the authenticated identity attached to a request context.
// Impersonation tokens produce a principal for the target user, never for
// the issuing super admin, so tenant-scoped checks apply to them unchanged.
type Principal struct {
	UserID         string
	TenantID       string
	Role           string
	IsSuperAdmin   bool
	Impersonation  bool
	ImpersonatorID string
}

// Define a private custom type to avoid collisions
type contextKey struct{}

var principalContextKey = contextKey{}

// WithPrincipal returns a new context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}
