// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring"
	"github.com/canonical/access-control-service/internal/tracing"
)

// ErrForbidden indicates an authenticated caller without sufficient
// privilege. Kept distinct from authentication failures at every boundary.
var ErrForbidden = fmt.Errorf("forbidden")

var _ AuthorizerInterface = (*Authorizer)(nil)

// Authorizer answers capability questions from the static role table. It
// holds no state and never performs I/O, the injected tracer only records
// where in a request the decision was made.
type Authorizer struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) CheckCapability(ctx context.Context, role string, capability Capability) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckCapability")
	defer span.End()

	r, err := ParseRole(role)
	if err != nil {
		return err
	}

	ok, err := HasCapability(r, capability)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Security().AuthzFailure(role, string(capability))
		return fmt.Errorf("%w: role %q lacks capability %q", ErrForbidden, role, capability)
	}

	return nil
}

func (a *Authorizer) Capabilities(ctx context.Context, role string) ([]Capability, error) {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Capabilities")
	defer span.End()

	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	return ResolveCapabilities(r)
}

func NewAuthorizer(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)

	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
