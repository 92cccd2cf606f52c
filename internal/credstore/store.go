// Package credstore holds the fixed allowlist of operator and test
// accounts that take precedence over the remote identity provider.
package credstore

import "github.com/facturapro/sessiond/domain"

// Record binds a login handle and secret to a resolved identity.
// Secrets are compared by exact string equality: this models a small
// build-time allowlist, not a production password store.
type Record struct {
	Handle   string
	Secret   string
	Identity domain.Identity
}

// Store is an enumerable, immutable set of credential records.
type Store struct {
	records []Record
}

// New builds a store from the given records.
func New(records ...Record) *Store {
	return &Store{records: append([]Record(nil), records...)}
}

// Fixed returns the built-in operator and test accounts.
func Fixed() *Store {
	return New(
		Record{
			Handle: "adminpro",
			Secret: "admin123",
			Identity: domain.Identity{
				ID:     "admin-001",
				Name:   "Administrador Sistema",
				Email:  "admin@sistema.com",
				Role:   domain.RoleAdmin,
				Active: true,
			},
		},
		Record{
			Handle: "empresa@test.com",
			Secret: "empresa123",
			Identity: domain.Identity{
				ID:    "company-001",
				Name:  "Usuario Empresa",
				Email: "empresa@test.com",
				Role:  domain.RoleOwner,
				Tenant: &domain.Tenant{
					ID:   "company-001",
					Name: "Empresa Test S.A.C.",
				},
				Active: true,
			},
		},
		// Logging in with the demo credentials is equivalent to the demo
		// entry point on the login screen.
		Record{
			Handle:   domain.DemoEmail,
			Secret:   "demo123",
			Identity: *domain.NewDemoIdentity(),
		},
	)
}

// Lookup matches handle and secret against the allowlist. Matching is
// exact and case-sensitive; empty arguments never match. Pure, no I/O.
func (s *Store) Lookup(handle, secret string) (*domain.Identity, bool) {
	if s == nil || handle == "" || secret == "" {
		return nil, false
	}
	for _, rec := range s.records {
		if rec.Handle == handle && rec.Secret == secret {
			identity := rec.Identity
			return &identity, true
		}
	}
	return nil, false
}

// Account is the secret-free view of a credential record.
type Account struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Accounts lists the known login handles for operator tooling. Secrets
// are never exposed.
func (s *Store) Accounts() []Account {
	if s == nil {
		return nil
	}
	out := make([]Account, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, Account{
			Handle: rec.Handle,
			Name:   rec.Identity.Name,
			Role:   string(rec.Identity.Role),
		})
	}
	return out
}
