// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
)

type AuthorizerInterface interface {
	CheckCapability(ctx context.Context, role string, capability Capability) error
	Capabilities(ctx context.Context, role string) ([]Capability, error)
}
