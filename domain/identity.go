package domain

import "time"

// Tenant is the company an identity belongs to.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity represents an authenticated principal, regardless of which
// source (credential store, remote provider, demo) resolved it.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Tenant    *Tenant   `json:"tenant,omitempty"`
	Demo      bool      `json:"demo"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Identity) IsActive() bool {
	return i != nil && i.Active
}

// Validate enforces the tenant invariant: tenant-scoped roles carry a
// tenant reference, platform roles never do.
func (i *Identity) Validate() error {
	if i == nil || i.ID == "" {
		return ErrInvalidIdentity
	}
	if !i.Role.Valid() {
		return ErrInvalidIdentity
	}
	if i.Role.TenantScoped() && i.Tenant == nil {
		return ErrInvalidIdentity
	}
	if !i.Role.TenantScoped() && i.Tenant != nil {
		return ErrInvalidIdentity
	}
	return nil
}
