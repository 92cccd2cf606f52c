package domain

import "time"

// Demo fixture constants. The demo identity is constructed locally and is
// never backed by the remote provider.
const (
	DemoIdentityID = "demo-company-001"
	DemoTenantID   = "company-demo-001"
	DemoTenantName = "Empresa Demo S.A.C."
	DemoEmail      = "demo@empresa.com"
	DemoName       = "María González"
)

// NewDemoIdentity builds the well-known demo identity with fresh
// timestamps. The demo role ranks as member, so the identity can never
// pass an elevated capability or role check.
func NewDemoIdentity() *Identity {
	now := time.Now().UTC()
	return &Identity{
		ID:    DemoIdentityID,
		Name:  DemoName,
		Email: DemoEmail,
		Role:  RoleDemo,
		Tenant: &Tenant{
			ID:   DemoTenantID,
			Name: DemoTenantName,
		},
		Demo:      true,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
