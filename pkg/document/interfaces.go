// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package document

import (
	"context"

	"github.com/canonical/access-control-service/internal/types"
)

type ServiceInterface interface {
	CreateDocument(ctx context.Context, tenantID, title, createdBy string) (*types.Document, error)
	ListDocuments(ctx context.Context, tenantID string) ([]*types.Document, error)
}

type StorageInterface interface {
	CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error)
	ListDocumentsByTenantID(ctx context.Context, tenantID string) ([]*types.Document, error)
}
