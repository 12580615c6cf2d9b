// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"fmt"

	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/storage"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	return &Service{
		storage: storage,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// Record appends one entry for a privileged action. A failure here must fail
// the enclosing operation: callers invoke Record inside their transaction
// context and propagate the error, an entry is never silently dropped.
func (s *Service) Record(ctx context.Context, action, actorID, tenantID string, metadata map[string]any) (*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Service.Record")
	defer span.End()

	if action == "" {
		return nil, fmt.Errorf("audit action is required")
	}

	entry, err := s.storage.CreateAuditEntry(ctx, &types.AuditEntry{
		Action:   action,
		ActorID:  actorID,
		TenantID: tenantID,
		Metadata: metadata,
	})
	if err != nil {
		s.logger.Errorf("failed to record audit entry for %s: %v", action, err)
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	return entry, nil
}

func (s *Service) Query(ctx context.Context, f storage.AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Service.Query")
	defer span.End()

	entries, err := s.storage.ListAuditEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}

	return entries, nil
}
