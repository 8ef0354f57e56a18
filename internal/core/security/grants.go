// Package security provides authorization against entity-scoped grants.
//
// A grant ties an owning entity (a client or a payer, by pubId) to the set of
// roles a user holds on it. Child entities are always authorized through
// their owner's pubId, never through their own.
package security

import (
	"fmt"
	"sort"
	"strings"

	"healthops/internal/core/apperror"
)

// Role is a permission level held on an owning entity.
type Role string

const (
	RoleView  Role = "view"
	RoleAdd   Role = "add"
	RoleEdit  Role = "edit"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleView, RoleAdd, RoleEdit, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// TenantType classifies the organisation a caller belongs to.
type TenantType string

const (
	// TenantVendor is the platform operator; only vendors create clients.
	TenantVendor TenantType = "vendor"
	TenantClient TenantType = "client"
	TenantPayer  TenantType = "payer"
)

// RoleSet is the set of roles held on one owner.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether the set satisfies role.
// Any role at all satisfies RoleView.
func (s RoleSet) Has(role Role) bool {
	if role == RoleView {
		return len(s) > 0
	}
	_, ok := s[role]
	return ok
}

// Sorted returns the roles in stable order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Grants maps an owning entity's pubId to the roles held on it.
type Grants map[string]RoleSet

// Add records role on owner.
func (g Grants) Add(owner string, role Role) {
	set, ok := g[owner]
	if !ok {
		set = make(RoleSet)
		g[owner] = set
	}
	set[role] = struct{}{}
}

// Caller is the authenticated actor of a request.
// It is passed explicitly into every mutation.
type Caller struct {
	UserID     string
	Grants     Grants
	TenantType TenantType
}

// NewCaller creates a Caller with an empty grant list.
func NewCaller(userID string, tenantType TenantType) Caller {
	return Caller{UserID: userID, Grants: make(Grants), TenantType: tenantType}
}

// IsVendor reports whether the caller belongs to the platform operator.
func (c Caller) IsVendor() bool {
	return c.TenantType == TenantVendor
}

// Can reports whether the caller holds role on owner.
func (c Caller) Can(owner string, role Role) bool {
	if owner == "" {
		return false
	}
	set, ok := c.Grants[owner]
	if !ok {
		return false
	}
	return set.Has(role)
}

// Authorize returns a forbidden error unless the caller holds role on owner.
func Authorize(c Caller, owner string, role Role) error {
	if c.UserID == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	if c.Can(owner, role) {
		return nil
	}
	return apperror.NewForbidden(forbiddenMessage(role)).
		WithDetail("owner", owner).
		WithDetail("role", role)
}

// RequireVendor returns a forbidden error unless the caller is a vendor user.
func RequireVendor(c Caller) error {
	if c.UserID == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	if !c.IsVendor() {
		return apperror.NewForbidden("Only platform administrators can perform this action")
	}
	return nil
}

func forbiddenMessage(role Role) string {
	switch role {
	case RoleAdd:
		return "You do not have permission to add records here"
	case RoleEdit:
		return "You do not have permission to edit this record"
	case RoleAdmin:
		return "Administrator permission is required for this action"
	default:
		return "You do not have access to this record"
	}
}
