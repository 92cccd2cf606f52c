// Package authz is the authorization guard: pure, synchronous allow/deny
// decisions over a session snapshot. It performs no I/O and holds no
// state, so call sites can consult it at render and action time freely.
package authz

import "github.com/facturapro/sessiond/domain"

// Allowed reports whether the session's identity holds the capability.
// Anonymous sessions hold nothing.
func Allowed(session domain.Session, capability domain.Capability) bool {
	perms := session.Permissions()
	if perms == nil {
		return false
	}
	return perms[capability]
}

// AllowedRole reports whether the session's identity sits at or above
// the minimum role. A demo identity compares as member regardless of the
// role it carries, so a stale persisted demo record with an elevated
// role never passes a higher check.
func AllowedRole(session domain.Session, min domain.Role) bool {
	if session.Identity == nil {
		return false
	}
	role := session.Identity.Role
	if session.Identity.Demo {
		role = domain.RoleMember
	}
	return role.AtLeast(min)
}
