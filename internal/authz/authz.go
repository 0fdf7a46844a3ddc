// Package authz decides whether an authenticated actor may perform an action.
package authz

import (
	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/response"
)

// MsgInsufficientPermissions is the message of every role-gate denial
const MsgInsufficientPermissions = "insufficient_permissions"

var (
	// Managers may mutate releases, the catalog and the task flow
	Managers = []string{domain.RoleAdmin, domain.RoleReleaseManager}
	// AdminOnly guards reference data and account administration
	AdminOnly = []string{domain.RoleAdmin}
)

// Actor is the authenticated identity performing a request
type Actor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Is reports whether the actor is the given user
func (a Actor) Is(userID uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == userID
}

// HasRole reports whether the actor's role is one of allowed
func (a Actor) HasRole(allowed ...string) bool {
	return HasRole(a.Role, allowed...)
}

// HasRole compares role names by plain string equality
func HasRole(role string, allowed ...string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// Authorize returns nil when role is allowed, otherwise a FORBIDDEN AppError
func Authorize(role string, allowed ...string) error {
	if HasRole(role, allowed...) {
		return nil
	}
	return response.NewForbiddenError(MsgInsufficientPermissions, "")
}

// AuthorizeOwnerOr allows the owner of a resource or any of the allowed roles
func AuthorizeOwnerOr(actor Actor, ownerID uuid.UUID, allowed ...string) error {
	if actor.Is(ownerID) {
		return nil
	}
	return Authorize(actor.Role, allowed...)
}

// RequireRole denies with a message naming the role that would have been accepted
func RequireRole(actor Actor, required string, alsoAllowed ...string) error {
	if actor.Role == required || actor.HasRole(alsoAllowed...) {
		return nil
	}
	return response.NewForbiddenError(MsgInsufficientPermissions, "required role: "+required)
}
