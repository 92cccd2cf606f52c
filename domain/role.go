package domain

// Role is the closed set of privilege levels an identity can hold.
// Admin is platform-wide; owner and member are scoped to a tenant.
// Demo sits outside the privilege order and ranks as member.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleDemo   Role = "demo"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleMember, RoleDemo:
		return true
	}
	return false
}

// TenantScoped reports whether identities with this role belong to a tenant.
func (r Role) TenantScoped() bool {
	return r == RoleOwner || r == RoleMember || r == RoleDemo
}

// rank positions a role in the privilege order. Demo deliberately maps to
// the member rank so a demo session can never pass a higher-role check.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleOwner:
		return 2
	case RoleMember, RoleDemo:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r sits at or above min in the privilege order.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank() && r.rank() > 0
}

// ParseRole maps a provider-supplied role string onto the closed enum.
// Unknown values degrade to member rather than failing resolution.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "owner", "company":
		return RoleOwner
	case "member":
		return RoleMember
	case "demo":
		return RoleDemo
	default:
		return RoleMember
	}
}
