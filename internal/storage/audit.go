// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/access-control-service/internal/types"
)

const defaultAuditQueryLimit uint64 = 100

var _ AuditStorageInterface = (*Storage)(nil)

// CreateAuditEntry appends one entry to the audit log. There is no
// corresponding update or delete statement anywhere in this package.
func (s *Storage) CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateAuditEntry")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit entry ID: %w", err)
	}

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	var entry types.AuditEntry
	var rawOut []byte
	err = s.db.Statement(ctx).
		Insert("audit_log").
		Columns("id", "action", "actor_id", "tenant_id", "metadata").
		Values(id.String(), e.Action, e.ActorID, e.TenantID, raw).
		Suffix("RETURNING id, action, actor_id, tenant_id, metadata, created_at").
		QueryRowContext(ctx).
		Scan(&entry.ID, &entry.Action, &entry.ActorID, &entry.TenantID, &rawOut, &entry.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if err := json.Unmarshal(rawOut, &entry.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
	}

	return &entry, nil
}

// ListAuditEntries returns entries matching the filter, most recent first.
func (s *Storage) ListAuditEntries(ctx context.Context, f AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListAuditEntries")
	defer span.End()

	limit := f.Limit
	if limit == 0 {
		limit = defaultAuditQueryLimit
	}

	query := s.db.Statement(ctx).
		Select("id", "action", "actor_id", "tenant_id", "metadata", "created_at").
		From("audit_log")

	if f.Action != "" {
		query = query.Where(sq.Eq{"action": f.Action})
	}
	if f.TenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": f.TenantID})
	}
	if f.ActorID != "" {
		query = query.Where(sq.Eq{"actor_id": f.ActorID})
	}
	if !f.Since.IsZero() {
		query = query.Where(sq.GtOrEq{"created_at": f.Since})
	}
	if !f.Until.IsZero() {
		query = query.Where(sq.LtOrEq{"created_at": f.Until})
	}

	rows, err := query.
		OrderBy("created_at DESC, id DESC").
		Limit(limit).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*types.AuditEntry
	for rows.Next() {
		var e types.AuditEntry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.TenantID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}
