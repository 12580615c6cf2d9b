// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"fmt"
)

// Role is the closed set of tenant-scoped roles. Unknown role strings are
// rejected at the boundary via ParseRole, business logic never sees them.
type Role string

const (
	RoleViewer      Role = "viewer"
	RoleContributor Role = "contributor"
	RoleEditor      Role = "editor"
	RoleAdmin       Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// Capability is an atomic permission tag granted transitively through a role.
type Capability string

const (
	CapDocumentsRead   Capability = "documents:read"
	CapDocumentsWrite  Capability = "documents:write"
	CapDocumentsDelete Capability = "documents:delete"
	CapUsersManage     Capability = "users:manage"
	CapTenantSettings  Capability = "tenant:settings"
)

// ErrUnknownRole indicates a role outside the closed enumeration. This is a
// data-corruption condition, not a user-facing one.
var ErrUnknownRole = fmt.Errorf("unknown role")

// capabilities is the static role to capability table. The sets are ordered
// by inclusion: viewer < contributor < editor < admin.
var capabilities = map[Role][]Capability{
	RoleViewer: {
		CapDocumentsRead,
	},
	RoleContributor: {
		CapDocumentsRead,
		CapDocumentsWrite,
	},
	RoleEditor: {
		CapDocumentsRead,
		CapDocumentsWrite,
		CapDocumentsDelete,
	},
	RoleAdmin: {
		CapDocumentsRead,
		CapDocumentsWrite,
		CapDocumentsDelete,
		CapUsersManage,
		CapTenantSettings,
	},
}

// ParseRole maps a raw role string to the closed enumeration.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if _, ok := capabilities[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return r, nil
}

// ResolveCapabilities returns the capability set for a role. Pure and
// deterministic, the returned slice is a copy.
func ResolveCapabilities(r Role) ([]Capability, error) {
	caps, ok := capabilities[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}

	out := make([]Capability, len(caps))
	copy(out, caps)
	return out, nil
}

// HasCapability reports whether the role grants the capability.
func HasCapability(r Role, c Capability) (bool, error) {
	caps, ok := capabilities[r]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}

	for _, got := range caps {
		if got == c {
			return true, nil
		}
	}
	return false, nil
}
