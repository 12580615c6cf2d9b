// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/access-control-service/internal/types"
)

type contextKey struct{}

var tenantContextKey = contextKey{}

// WithTenant returns a new context carrying the resolved tenant.
func WithTenant(ctx context.Context, t *types.Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, t)
}

// TenantFromContext retrieves the tenant resolved by the middleware.
func TenantFromContext(ctx context.Context) (*types.Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey).(*types.Tenant)
	return t, ok
}
