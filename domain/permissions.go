package domain

// Capability names a UI-facing feature gate.
type Capability string

const (
	CapManageCompanies  Capability = "manage-companies"
	CapManageUsers      Capability = "manage-users"
	CapViewDashboard    Capability = "view-dashboard"
	CapManageInvoices   Capability = "manage-invoices"
	CapAccessPOS        Capability = "access-pos"
	CapManageInventory  Capability = "manage-inventory"
	CapManageAccounting Capability = "manage-accounting"
	CapViewReports      Capability = "view-reports"
	CapManageSettings   Capability = "manage-settings"
)

// Capabilities lists every known capability in a stable order.
var Capabilities = []Capability{
	CapManageCompanies,
	CapManageUsers,
	CapViewDashboard,
	CapManageInvoices,
	CapAccessPOS,
	CapManageInventory,
	CapManageAccounting,
	CapViewReports,
	CapManageSettings,
}

// ParseCapability validates a capability name against the known set.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range Capabilities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// PermissionSet maps every capability to an allow flag. The key set is
// identical for all roles; only the values differ.
type PermissionSet map[Capability]bool

// rolePermissions is the static role table. Adding a role means adding
// exactly one row here.
var rolePermissions = map[Role][]Capability{
	RoleAdmin: {
		CapManageCompanies, CapManageUsers, CapViewDashboard, CapManageInvoices,
		CapAccessPOS, CapManageInventory, CapManageAccounting, CapViewReports,
		CapManageSettings,
	},
	RoleOwner: {
		CapManageUsers, CapViewDashboard, CapManageInvoices, CapAccessPOS,
		CapManageInventory, CapManageAccounting, CapViewReports, CapManageSettings,
	},
	RoleMember: {
		CapViewDashboard, CapManageInvoices, CapAccessPOS, CapViewReports,
	},
}

// PermissionsFor derives the permission set for a role. Total and
// deterministic: unknown roles and demo both resolve to the member row,
// so a demo session never receives elevated capabilities.
func PermissionsFor(role Role) PermissionSet {
	granted, ok := rolePermissions[role]
	if !ok {
		granted = rolePermissions[RoleMember]
	}
	set := make(PermissionSet, len(Capabilities))
	for _, c := range Capabilities {
		set[c] = false
	}
	for _, c := range granted {
		set[c] = true
	}
	return set
}
