// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/types"
)

type ServiceInterface interface {
	Record(ctx context.Context, action, actorID, tenantID string, metadata map[string]any) (*types.AuditEntry, error)
	Query(ctx context.Context, f storage.AuditFilter) ([]*types.AuditEntry, error)
}

type StorageInterface interface {
	CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error)
	ListAuditEntries(ctx context.Context, f storage.AuditFilter) ([]*types.AuditEntry, error)
}
