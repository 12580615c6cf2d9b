// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package document

import (
	"context"

	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
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

func (s *Service) CreateDocument(ctx context.Context, tenantID, title, createdBy string) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.Service.CreateDocument")
	defer span.End()

	return s.storage.CreateDocument(ctx, &types.Document{
		TenantID:  tenantID,
		Title:     title,
		CreatedBy: createdBy,
	})
}

func (s *Service) ListDocuments(ctx context.Context, tenantID string) ([]*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.Service.ListDocuments")
	defer span.End()

	return s.storage.ListDocumentsByTenantID(ctx, tenantID)
}
